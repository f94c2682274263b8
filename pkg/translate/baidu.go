package translate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaiduURL is the Baidu general text translation endpoint.
const DefaultBaiduURL = "https://fanyi-api.baidu.com/api/trans/vip/translate"

var baiduErrors = map[string]string{
	"52001": "request timed out",
	"52002": "system error",
	"52003": "unauthorized user",
	"54000": "required parameter is empty",
	"54001": "signature error",
	"54003": "access frequency limited",
	"54004": "insufficient account balance",
	"54005": "long queries sent too frequently",
	"58000": "client IP not allowed",
	"58001": "target language not supported",
	"58002": "service is closed",
	"90107": "certification not passed or not effective",
}

// BaiduConfig configures a BaiduClient.
type BaiduConfig struct {
	// Endpoint defaults to DefaultBaiduURL.
	Endpoint   string
	AppID      string
	SecretKey  string
	From       string
	To         string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// BaiduClient implements Translator for Baidu Fanyi.
type BaiduClient struct {
	endpoint   string
	appID      string
	secretKey  string
	from, to   string
	httpClient *http.Client
	logger     *logrus.Logger
	mapper     *LanguageMapper

	now func() time.Time
}

// NewBaiduClient creates a new Baidu client.
func NewBaiduClient(cfg BaiduConfig) *BaiduClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultBaiduURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = newHTTPClient(DefaultTimeout)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &BaiduClient{
		endpoint:   cfg.Endpoint,
		appID:      cfg.AppID,
		secretKey:  cfg.SecretKey,
		from:       cfg.From,
		to:         cfg.To,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		mapper:     NewLanguageMapper(),
		now:        time.Now,
	}
}

// Name returns ProviderBaidu.
func (c *BaiduClient) Name() Provider {
	return ProviderBaidu
}

type baiduResponse struct {
	From        string `json:"from"`
	To          string `json:"to"`
	TransResult []struct {
		Src string `json:"src"`
		Dst string `json:"dst"`
	} `json:"trans_result"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Translate translates req.Text with Baidu.
func (c *BaiduClient) Translate(ctx context.Context, req *Request) (*Result, error) {
	from := c.mapper.ToProviderCode(ProviderBaidu, firstNonEmpty(req.From, c.from, "auto"))
	to := c.mapper.ToProviderCode(ProviderBaidu, firstNonEmpty(req.To, c.to, "zh"))

	c.logger.WithFields(logrus.Fields{
		"provider":    ProviderBaidu,
		"source_lang": from,
		"target_lang": to,
		"text_length": len(req.Text),
	}).Debug("Translating text with Baidu")

	salt := strconv.FormatInt(c.now().UnixMilli(), 10)

	params := url.Values{}
	params.Set("q", req.Text)
	params.Set("from", from)
	params.Set("to", to)
	params.Set("appid", c.appID)
	params.Set("salt", salt)
	params.Set("sign", BaiduSign(c.appID, c.secretKey, req.Text, salt))

	httpReq, err := newFormRequest(ctx, c.endpoint, params)
	if err != nil {
		return nil, err
	}
	body, err := do(c.httpClient, c.logger, ProviderBaidu, httpReq)
	if err != nil {
		return nil, err
	}

	var br baiduResponse
	if err := json.Unmarshal(body, &br); err != nil {
		c.logger.WithError(err).Error("Failed to decode Baidu response")
		return nil, fmt.Errorf("decode response: %w", err)
	}
	// 52000 is Baidu's explicit success code.
	if br.ErrorCode != "" && br.ErrorCode != "52000" {
		msg := br.ErrorMsg
		if known, ok := baiduErrors[br.ErrorCode]; ok {
			msg = known
		}
		return nil, &ProviderError{Provider: ProviderBaidu, Code: br.ErrorCode, Message: msg}
	}
	if len(br.TransResult) == 0 {
		return nil, fmt.Errorf("no translation returned")
	}

	lines := make([]string, 0, len(br.TransResult))
	for _, r := range br.TransResult {
		lines = append(lines, r.Dst)
	}

	c.logger.WithFields(logrus.Fields{
		"provider":    ProviderBaidu,
		"source_lang": br.From,
		"target_lang": br.To,
	}).Info("Translation completed successfully")

	return &Result{
		Provider:       ProviderBaidu,
		Query:          req.Text,
		TranslatedText: strings.Join(lines, "\n"),
		DetectedSource: br.From,
	}, nil
}

// BaiduSign computes md5(appid + q + salt + secretKey) as lowercase hex.
func BaiduSign(appID, secretKey, q, salt string) string {
	sum := md5.Sum([]byte(appID + q + salt + secretKey))
	return hex.EncodeToString(sum[:])
}
