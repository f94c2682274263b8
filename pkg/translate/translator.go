package translate

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// Translator is one translation provider's client.
// Each call is a single attempt; callers decide whether to try again.
type Translator interface {
	// Name returns the provider this client talks to.
	Name() Provider

	// Translate sends req.Text to the provider. Empty From/To fall back to
	// the language pair the client was configured with.
	Translate(ctx context.Context, req *Request) (*Result, error)
}

// Request is a single translation request.
type Request struct {
	Text string
	From string
	To   string
}

// Result is a provider's successful answer.
type Result struct {
	Provider       Provider `json:"provider"`
	Query          string   `json:"query"`
	TranslatedText string   `json:"text"`
	// DetectedSource is the source language the provider reports, if any.
	DetectedSource string `json:"from,omitempty"`

	// Youdao only, populated when audio is enabled.
	Phonetic  string `json:"phonetic,omitempty"`
	SpeakURL  string `json:"speak_url,omitempty"`
	TSpeakURL string `json:"tspeak_url,omitempty"`
}

// LanguageMapper converts user-facing language codes (BCP 47 such as
// "zh-CN", "en-US" or "ja") into each provider's own code set.
type LanguageMapper struct{}

// NewLanguageMapper creates a new language mapper instance.
func NewLanguageMapper() *LanguageMapper {
	return &LanguageMapper{}
}

// baiduCodes lists the base languages whose Baidu code differs from ISO 639-1.
var baiduCodes = map[string]string{
	"ja": "jp",
	"ko": "kor",
	"fr": "fra",
	"es": "spa",
	"ar": "ara",
	"bg": "bul",
	"et": "est",
	"da": "dan",
	"fi": "fin",
	"ro": "rom",
	"sl": "slo",
	"sv": "swe",
	"vi": "vie",
}

// ToProviderCode converts code for provider p.
// Examples:
//   - youdao, "zh-CN" -> "zh-CHS"
//   - baidu, "zh-TW" -> "cht"
//   - microsoft, "zh" -> "zh-Hans"
//   - any, "en-US" -> "en"
//
// "auto" and "" are returned lowercased and unchanged. Codes that do not
// parse as BCP 47 are passed through so the provider can reject them.
func (lm *LanguageMapper) ToProviderCode(p Provider, code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, "auto") {
		return strings.ToLower(code)
	}

	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, _ := tag.Base()
	b := base.String()

	if b == "zh" {
		script, _ := tag.Script()
		traditional := script.String() == "Hant"
		switch p {
		case ProviderYoudao:
			if traditional {
				return "zh-CHT"
			}
			return "zh-CHS"
		case ProviderBaidu:
			if traditional {
				return "cht"
			}
			return "zh"
		case ProviderMicrosoft:
			if traditional {
				return "zh-Hant"
			}
			return "zh-Hans"
		}
		return b
	}

	if p == ProviderBaidu {
		if c, ok := baiduCodes[b]; ok {
			return c
		}
	}
	return b
}
