package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultMicrosoftURL is the Azure AI Translator v3 translate endpoint.
const DefaultMicrosoftURL = "https://api.cognitive.microsofttranslator.com/translate"

// MicrosoftConfig configures a MicrosoftClient.
type MicrosoftConfig struct {
	// Endpoint defaults to DefaultMicrosoftURL.
	Endpoint        string
	SubscriptionKey string
	// Location is the Azure resource region, sent as Ocp-Apim-Subscription-Region.
	Location   string
	From       string
	To         string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// MicrosoftClient implements Translator for Azure AI Translator.
type MicrosoftClient struct {
	endpoint   string
	key        string
	location   string
	from, to   string
	httpClient *http.Client
	logger     *logrus.Logger
	mapper     *LanguageMapper
}

// NewMicrosoftClient creates a new Microsoft client.
func NewMicrosoftClient(cfg MicrosoftConfig) *MicrosoftClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultMicrosoftURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = newHTTPClient(DefaultTimeout)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &MicrosoftClient{
		endpoint:   cfg.Endpoint,
		key:        cfg.SubscriptionKey,
		location:   cfg.Location,
		from:       cfg.From,
		to:         cfg.To,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		mapper:     NewLanguageMapper(),
	}
}

// Name returns ProviderMicrosoft.
func (c *MicrosoftClient) Name() Provider {
	return ProviderMicrosoft
}

type microsoftRequest struct {
	Text string `json:"Text"`
}

type microsoftResponse struct {
	DetectedLanguage *struct {
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	} `json:"detectedLanguage,omitempty"`
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

type microsoftError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Translate translates req.Text with Microsoft. An empty source language
// lets the service detect it.
func (c *MicrosoftClient) Translate(ctx context.Context, req *Request) (*Result, error) {
	from := c.mapper.ToProviderCode(ProviderMicrosoft, firstNonEmpty(req.From, c.from))
	if from == "auto" {
		from = ""
	}
	to := c.mapper.ToProviderCode(ProviderMicrosoft, firstNonEmpty(req.To, c.to, "zh-Hans"))

	c.logger.WithFields(logrus.Fields{
		"provider":    ProviderMicrosoft,
		"source_lang": from,
		"target_lang": to,
		"text_length": len(req.Text),
	}).Debug("Translating text with Microsoft")

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("api-version", "3.0")
	q.Set("to", to)
	if from != "" {
		q.Set("from", from)
	}
	u.RawQuery = q.Encode()

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode([]microsoftRequest{{Text: req.Text}}); err != nil {
		c.logger.WithError(err).Error("Failed to encode translation request")
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	httpReq.Header.Set("Ocp-Apim-Subscription-Region", c.location)
	httpReq.Header.Set("X-ClientTraceId", uuid.New().String())

	body, err := do(c.httpClient, c.logger, ProviderMicrosoft, httpReq)
	if err != nil {
		var me microsoftError
		if body != nil && json.Unmarshal(body, &me) == nil && me.Error.Code != 0 {
			return nil, &ProviderError{
				Provider: ProviderMicrosoft,
				Code:     strconv.Itoa(me.Error.Code),
				Message:  me.Error.Message,
			}
		}
		return nil, err
	}

	var mr []microsoftResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		c.logger.WithError(err).Error("Failed to decode Microsoft response")
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(mr) == 0 || len(mr[0].Translations) == 0 {
		return nil, fmt.Errorf("no translation returned")
	}

	res := &Result{
		Provider:       ProviderMicrosoft,
		Query:          req.Text,
		TranslatedText: mr[0].Translations[0].Text,
		DetectedSource: from,
	}
	if mr[0].DetectedLanguage != nil {
		res.DetectedSource = mr[0].DetectedLanguage.Language
	}

	c.logger.WithFields(logrus.Fields{
		"provider":    ProviderMicrosoft,
		"source_lang": res.DetectedSource,
		"target_lang": to,
	}).Info("Translation completed successfully")

	return res, nil
}
