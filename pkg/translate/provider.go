package translate

import (
	"github.com/dasmlab/notetrans/pkg/settings"
)

// Provider identifies a translation service.
type Provider string

const (
	// ProviderYoudao is Youdao AI open platform text translation.
	ProviderYoudao Provider = "youdao"
	// ProviderBaidu is Baidu Fanyi general text translation.
	ProviderBaidu Provider = "baidu"
	// ProviderMicrosoft is Azure AI Translator v3.
	ProviderMicrosoft Provider = "microsoft"
)

// Field is a required credential field of a provider.
type Field struct {
	// Name is the settings key, also used in user-facing messages.
	Name  string
	Value func(settings.Settings) string
}

// ProviderSpec ties a provider to its enable flag and required fields.
type ProviderSpec struct {
	Provider  Provider
	EnableKey string
	Enabled   func(settings.Settings) bool
	Required  []Field
}

// specs is ordered; validation messages and dispatch outcomes follow this order.
var specs = []ProviderSpec{
	{
		Provider:  ProviderYoudao,
		EnableKey: "youdaoEnable",
		Enabled:   func(s settings.Settings) bool { return s.YoudaoEnable },
		Required: []Field{
			{Name: "appId", Value: func(s settings.Settings) string { return s.AppID }},
			{Name: "secretKey", Value: func(s settings.Settings) string { return s.SecretKey }},
		},
	},
	{
		Provider:  ProviderBaidu,
		EnableKey: "baiduEnable",
		Enabled:   func(s settings.Settings) bool { return s.BaiduEnable },
		Required: []Field{
			{Name: "baiduAppId", Value: func(s settings.Settings) string { return s.BaiduAppID }},
			{Name: "baiduSecretKey", Value: func(s settings.Settings) string { return s.BaiduSecretKey }},
		},
	},
	{
		Provider:  ProviderMicrosoft,
		EnableKey: "microsoftEnable",
		Enabled:   func(s settings.Settings) bool { return s.MicrosoftEnable },
		Required: []Field{
			{Name: "microsoftLocation", Value: func(s settings.Settings) string { return s.MicrosoftLocation }},
			{Name: "microsoftSecretKey", Value: func(s settings.Settings) string { return s.MicrosoftSecretKey }},
		},
	},
}

// Specs returns the known providers in dispatch order.
func Specs() []ProviderSpec {
	out := make([]ProviderSpec, len(specs))
	copy(out, specs)
	return out
}

// ParseProvider parses a provider name.
func ParseProvider(name string) (Provider, bool) {
	for _, sp := range specs {
		if string(sp.Provider) == name {
			return sp.Provider, true
		}
	}
	return "", false
}

// EnabledProviders returns the providers whose enable flag is set.
func EnabledProviders(s settings.Settings) []Provider {
	var out []Provider
	for _, sp := range specs {
		if sp.Enabled(s) {
			out = append(out, sp.Provider)
		}
	}
	return out
}

// Runnable reports whether at least one provider is enabled.
// The translate command is only offered when this holds.
func Runnable(s settings.Settings) bool {
	for _, sp := range specs {
		if sp.Enabled(s) {
			return true
		}
	}
	return false
}

// Validate returns the names of the empty required fields of every enabled
// provider. Disabled providers never contribute. An empty result means valid.
func Validate(s settings.Settings) []string {
	var missing []string
	for _, sp := range specs {
		if !sp.Enabled(s) {
			continue
		}
		for _, f := range sp.Required {
			if f.Value(s) == "" {
				missing = append(missing, f.Name)
			}
		}
	}
	return missing
}

// Check combines Runnable and Validate: ErrNoProviderEnabled when nothing is
// enabled, *MissingCredentialsError when fields are missing, nil otherwise.
func Check(s settings.Settings) error {
	if !Runnable(s) {
		return ErrNoProviderEnabled
	}
	if missing := Validate(s); len(missing) > 0 {
		return &MissingCredentialsError{Fields: missing}
	}
	return nil
}
