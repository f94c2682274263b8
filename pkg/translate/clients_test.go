package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestYoudaoSign(t *testing.T) {
	short := YoudaoSign("key", "secret", "hello", "salt", "1700000000")
	if len(short) != 64 {
		t.Fatalf("sign length = %d, want 64 hex chars", len(short))
	}
	if short != YoudaoSign("key", "secret", "hello", "salt", "1700000000") {
		t.Fatal("sign must be deterministic")
	}

	long := strings.Repeat("a", 10) + strings.Repeat("b", 5) + strings.Repeat("c", 10)
	if got := youdaoInput(long); got != strings.Repeat("a", 10)+"25"+strings.Repeat("c", 10) {
		t.Fatalf("youdaoInput(long) = %q", got)
	}
	if got := youdaoInput("短文本"); got != "短文本" {
		t.Fatalf("youdaoInput(short) = %q", got)
	}
	cjk := strings.Repeat("字", 21)
	if got := youdaoInput(cjk); got != strings.Repeat("字", 10)+"21"+strings.Repeat("字", 10) {
		t.Fatalf("youdaoInput counts bytes instead of runes: %q", got)
	}
}

func TestYoudaoClientTranslate(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{"errorCode":"0","query":"Hello  world","translation":["你好 世界"],"l":"en2zh-CHS","basic":{"phonetic":"həˈləʊ"},"speakUrl":"http://s/src","tSpeakUrl":"http://s/dst"}`))
	}))
	defer srv.Close()

	c := NewYoudaoClient(YoudaoConfig{
		Endpoint:  srv.URL,
		AppKey:    "app",
		AppSecret: "secret",
		To:        "zh-CN",
		Audio:     true,
		Logger:    quietLogger(),
	})
	c.newSalt = func() string { return "fixed-salt" }
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	res, err := c.Translate(context.Background(), &Request{Text: "Hello  world"})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}

	want := map[string]string{
		"q":        "Hello  world",
		"from":     "auto",
		"to":       "zh-CHS",
		"appKey":   "app",
		"salt":     "fixed-salt",
		"curtime":  "1700000000",
		"signType": "v3",
		"sign":     YoudaoSign("app", "secret", "Hello  world", "fixed-salt", "1700000000"),
	}
	for k, v := range want {
		if form[k] != v {
			t.Errorf("form[%s] = %q, want %q", k, form[k], v)
		}
	}

	if res.TranslatedText != "你好 世界" || res.Provider != ProviderYoudao {
		t.Fatalf("unexpected result: %#v", res)
	}
	if res.DetectedSource != "en" {
		t.Errorf("DetectedSource = %q, want en", res.DetectedSource)
	}
	if res.TSpeakURL != "http://s/dst" || res.SpeakURL != "http://s/src" || res.Phonetic == "" {
		t.Errorf("audio fields missing: %#v", res)
	}
}

func TestYoudaoClientOmitsAudioWhenDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errorCode":"0","translation":["hi"],"tSpeakUrl":"http://s/dst"}`))
	}))
	defer srv.Close()

	c := NewYoudaoClient(YoudaoConfig{Endpoint: srv.URL, AppKey: "a", AppSecret: "b", Logger: quietLogger()})
	res, err := c.Translate(context.Background(), &Request{Text: "你好"})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if res.TSpeakURL != "" {
		t.Fatalf("TSpeakURL = %q, want empty when audio is off", res.TSpeakURL)
	}
}

func TestYoudaoClientErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errorCode":"113"}`))
	}))
	defer srv.Close()

	c := NewYoudaoClient(YoudaoConfig{Endpoint: srv.URL, AppKey: "a", AppSecret: "b", Logger: quietLogger()})
	_, err := c.Translate(context.Background(), &Request{Text: ""})

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("Translate() error = %v, want *ProviderError", err)
	}
	if pe.Code != "113" || pe.Message != "query can not be empty" {
		t.Fatalf("ProviderError = %#v", pe)
	}
}

func TestBaiduClientTranslate(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{"from":"en","to":"zh","trans_result":[{"src":"Hello","dst":"你好"},{"src":"world","dst":"世界"}]}`))
	}))
	defer srv.Close()

	c := NewBaiduClient(BaiduConfig{Endpoint: srv.URL, AppID: "id", SecretKey: "sk", Logger: quietLogger()})
	c.now = func() time.Time { return time.UnixMilli(1700000000123) }

	res, err := c.Translate(context.Background(), &Request{Text: "Hello\nworld"})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}

	if form["from"] != "auto" || form["to"] != "zh" || form["appid"] != "id" {
		t.Errorf("unexpected form: %v", form)
	}
	if form["salt"] != "1700000000123" {
		t.Errorf("salt = %q", form["salt"])
	}
	if form["sign"] != BaiduSign("id", "sk", "Hello\nworld", "1700000000123") {
		t.Errorf("sign = %q", form["sign"])
	}
	if res.TranslatedText != "你好\n世界" || res.DetectedSource != "en" {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestBaiduSign(t *testing.T) {
	// md5("2015063000000001apple143566028812345678")
	got := BaiduSign("2015063000000001", "12345678", "apple", "1435660288")
	if got != "f89f9594663708c1605f3d736d01d2d4" {
		t.Fatalf("BaiduSign() = %q", got)
	}
}

func TestBaiduClientErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error_code":"54001","error_msg":"Invalid Sign"}`))
	}))
	defer srv.Close()

	c := NewBaiduClient(BaiduConfig{Endpoint: srv.URL, AppID: "id", SecretKey: "sk", Logger: quietLogger()})
	_, err := c.Translate(context.Background(), &Request{Text: "x"})

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != "54001" || pe.Message != "signature error" {
		t.Fatalf("Translate() error = %v, want signature ProviderError", err)
	}
}

func TestMicrosoftClientTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "ms-key" {
			t.Errorf("subscription key header = %q", got)
		}
		if got := r.Header.Get("Ocp-Apim-Subscription-Region"); got != "eastasia" {
			t.Errorf("region header = %q", got)
		}
		if r.Header.Get("X-ClientTraceId") == "" {
			t.Error("missing X-ClientTraceId")
		}
		q := r.URL.Query()
		if q.Get("api-version") != "3.0" || q.Get("to") != "zh-Hans" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if _, ok := q["from"]; ok {
			t.Errorf("from should be omitted for auto-detect, got %q", q.Get("from"))
		}

		var body []map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body) != 1 || body[0]["Text"] != "Hello" {
			t.Errorf("unexpected body: %v", body)
		}

		w.Write([]byte(`[{"detectedLanguage":{"language":"en","score":1.0},"translations":[{"text":"你好","to":"zh-Hans"}]}]`))
	}))
	defer srv.Close()

	c := NewMicrosoftClient(MicrosoftConfig{
		Endpoint:        srv.URL,
		SubscriptionKey: "ms-key",
		Location:        "eastasia",
		From:            "auto",
		Logger:          quietLogger(),
	})
	res, err := c.Translate(context.Background(), &Request{Text: "Hello"})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if res.TranslatedText != "你好" || res.DetectedSource != "en" {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestMicrosoftClientErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401000,"message":"The request is not authorized because credentials are missing or invalid."}}`))
	}))
	defer srv.Close()

	c := NewMicrosoftClient(MicrosoftConfig{Endpoint: srv.URL, SubscriptionKey: "bad", Location: "x", Logger: quietLogger()})
	_, err := c.Translate(context.Background(), &Request{Text: "Hello"})

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != "401000" {
		t.Fatalf("Translate() error = %v, want ProviderError 401000", err)
	}
}

func TestClientsRejectMalformedResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	}))
	defer srv.Close()

	clients := []Translator{
		NewYoudaoClient(YoudaoConfig{Endpoint: srv.URL, Logger: quietLogger()}),
		NewBaiduClient(BaiduConfig{Endpoint: srv.URL, Logger: quietLogger()}),
		NewMicrosoftClient(MicrosoftConfig{Endpoint: srv.URL, Logger: quietLogger()}),
	}
	for _, c := range clients {
		if _, err := c.Translate(context.Background(), &Request{Text: "x"}); err == nil {
			t.Errorf("%s: expected decode error", c.Name())
		}
	}
}

func TestClientsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewBaiduClient(BaiduConfig{Endpoint: srv.URL, Logger: quietLogger()})
	_, err := c.Translate(context.Background(), &Request{Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("Translate() error = %v, want status 502", err)
	}
}
