package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultYoudaoURL is the Youdao text translation endpoint.
const DefaultYoudaoURL = "https://openapi.youdao.com/api"

// youdaoErrors maps the common Youdao error codes to readable messages.
var youdaoErrors = map[string]string{
	"101": "missing required parameter",
	"102": "unsupported language",
	"103": "text too long",
	"108": "invalid application ID",
	"110": "no valid service bound to the application",
	"111": "invalid developer account",
	"113": "query can not be empty",
	"202": "signature check failed",
	"203": "client IP not in the allow list",
	"206": "invalid timestamp",
	"207": "replayed request",
	"401": "account balance overdue",
	"411": "access frequency limited",
}

// YoudaoConfig configures a YoudaoClient.
type YoudaoConfig struct {
	// Endpoint defaults to DefaultYoudaoURL.
	Endpoint  string
	AppKey    string
	AppSecret string
	From      string
	To        string
	// Audio keeps the pronunciation URLs and phonetic in results.
	Audio      bool
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// YoudaoClient implements Translator for Youdao (signType v3).
type YoudaoClient struct {
	endpoint   string
	appKey     string
	appSecret  string
	from, to   string
	audio      bool
	httpClient *http.Client
	logger     *logrus.Logger
	mapper     *LanguageMapper

	now     func() time.Time
	newSalt func() string
}

// NewYoudaoClient creates a new Youdao client.
func NewYoudaoClient(cfg YoudaoConfig) *YoudaoClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultYoudaoURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = newHTTPClient(DefaultTimeout)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &YoudaoClient{
		endpoint:   cfg.Endpoint,
		appKey:     cfg.AppKey,
		appSecret:  cfg.AppSecret,
		from:       cfg.From,
		to:         cfg.To,
		audio:      cfg.Audio,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		mapper:     NewLanguageMapper(),
		now:        time.Now,
		newSalt:    func() string { return uuid.New().String() },
	}
}

// Name returns ProviderYoudao.
func (c *YoudaoClient) Name() Provider {
	return ProviderYoudao
}

type youdaoResponse struct {
	ErrorCode   string   `json:"errorCode"`
	Query       string   `json:"query"`
	Translation []string `json:"translation"`
	Basic       *struct {
		Phonetic string `json:"phonetic"`
	} `json:"basic,omitempty"`
	L         string `json:"l"`
	SpeakURL  string `json:"speakUrl"`
	TSpeakURL string `json:"tSpeakUrl"`
}

// Translate translates req.Text with Youdao.
func (c *YoudaoClient) Translate(ctx context.Context, req *Request) (*Result, error) {
	from := c.mapper.ToProviderCode(ProviderYoudao, firstNonEmpty(req.From, c.from, "auto"))
	to := c.mapper.ToProviderCode(ProviderYoudao, firstNonEmpty(req.To, c.to, "auto"))

	c.logger.WithFields(logrus.Fields{
		"provider":    ProviderYoudao,
		"source_lang": from,
		"target_lang": to,
		"text_length": len(req.Text),
	}).Debug("Translating text with Youdao")

	salt := c.newSalt()
	curtime := strconv.FormatInt(c.now().Unix(), 10)

	params := url.Values{}
	params.Set("q", req.Text)
	params.Set("from", from)
	params.Set("to", to)
	params.Set("appKey", c.appKey)
	params.Set("salt", salt)
	params.Set("sign", YoudaoSign(c.appKey, c.appSecret, req.Text, salt, curtime))
	params.Set("signType", "v3")
	params.Set("curtime", curtime)

	httpReq, err := newFormRequest(ctx, c.endpoint, params)
	if err != nil {
		return nil, err
	}
	body, err := do(c.httpClient, c.logger, ProviderYoudao, httpReq)
	if err != nil {
		return nil, err
	}

	var yr youdaoResponse
	if err := json.Unmarshal(body, &yr); err != nil {
		c.logger.WithError(err).Error("Failed to decode Youdao response")
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if yr.ErrorCode != "0" {
		return nil, &ProviderError{Provider: ProviderYoudao, Code: yr.ErrorCode, Message: youdaoErrors[yr.ErrorCode]}
	}
	if len(yr.Translation) == 0 {
		return nil, fmt.Errorf("no translation returned")
	}

	res := &Result{
		Provider:       ProviderYoudao,
		Query:          req.Text,
		TranslatedText: strings.Join(yr.Translation, "\n"),
	}
	if src, _, ok := strings.Cut(yr.L, "2"); ok {
		res.DetectedSource = src
	}
	if c.audio {
		res.SpeakURL = yr.SpeakURL
		res.TSpeakURL = yr.TSpeakURL
		if yr.Basic != nil {
			res.Phonetic = yr.Basic.Phonetic
		}
	}

	c.logger.WithFields(logrus.Fields{
		"provider":    ProviderYoudao,
		"source_lang": from,
		"target_lang": to,
	}).Info("Translation completed successfully")

	return res, nil
}

// YoudaoSign computes the v3 signature:
// sha256(appKey + input + salt + curtime + appSecret), where input is q when
// it has at most 20 runes, else its first 10 runes, rune count and last 10 runes.
func YoudaoSign(appKey, appSecret, q, salt, curtime string) string {
	sum := sha256.Sum256([]byte(appKey + youdaoInput(q) + salt + curtime + appSecret))
	return hex.EncodeToString(sum[:])
}

func youdaoInput(q string) string {
	r := []rune(q)
	if len(r) <= 20 {
		return q
	}
	return string(r[:10]) + strconv.Itoa(len(r)) + string(r[len(r)-10:])
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
