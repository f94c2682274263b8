package translate

import (
	"net/http"
	"time"

	"github.com/dasmlab/notetrans/pkg/settings"
	"github.com/sirupsen/logrus"
)

// Config holds what the provider clients need besides the settings record.
type Config struct {
	// HTTPClient is shared by every client. If nil, one with Timeout is created.
	HTTPClient *http.Client
	// Timeout for the default HTTP client. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Endpoints overrides provider URLs (proxies, tests).
	Endpoints map[Provider]string
	// Logger is the logger instance to use. If nil, a default logger is created.
	Logger *logrus.Logger
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = newHTTPClient(c.Timeout)
	}
	return c
}

// NewTranslators creates a client for every enabled provider in s, in
// dispatch order. It does not validate credentials; callers run Check first.
func NewTranslators(s settings.Settings, cfg Config) []Translator {
	cfg = cfg.withDefaults()

	var out []Translator
	for _, p := range EnabledProviders(s) {
		out = append(out, newTranslator(p, s, cfg))
	}
	return out
}

func newTranslator(p Provider, s settings.Settings, cfg Config) Translator {
	cfg.Logger.WithFields(logrus.Fields{
		"provider": p,
		"endpoint": cfg.Endpoints[p],
	}).Debug("Creating translator instance")

	switch p {
	case ProviderYoudao:
		return NewYoudaoClient(YoudaoConfig{
			Endpoint:   cfg.Endpoints[p],
			AppKey:     s.AppID,
			AppSecret:  s.SecretKey,
			From:       s.YFrom,
			To:         s.YTo,
			Audio:      s.Audio,
			HTTPClient: cfg.HTTPClient,
			Logger:     cfg.Logger,
		})
	case ProviderBaidu:
		return NewBaiduClient(BaiduConfig{
			Endpoint:   cfg.Endpoints[p],
			AppID:      s.BaiduAppID,
			SecretKey:  s.BaiduSecretKey,
			From:       s.BFrom,
			To:         s.BTo,
			HTTPClient: cfg.HTTPClient,
			Logger:     cfg.Logger,
		})
	default:
		return NewMicrosoftClient(MicrosoftConfig{
			Endpoint:        cfg.Endpoints[p],
			SubscriptionKey: s.MicrosoftSecretKey,
			Location:        s.MicrosoftLocation,
			From:            s.MFrom,
			To:              s.MTo,
			HTTPClient:      cfg.HTTPClient,
			Logger:          cfg.Logger,
		})
	}
}
