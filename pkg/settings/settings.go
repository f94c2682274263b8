// Package settings holds the translator settings record and its persistence.
//
// The record is flat: one boolean enable flag per provider plus the
// credential, region and language-pair strings each provider needs. Every
// known key is always present; loading merges whatever was persisted over
// Defaults().
package settings

import (
	"fmt"
	"sort"
	"strconv"
)

// Settings is the translator configuration record.
// It is passed around by value so each translate invocation works on its own snapshot.
type Settings struct {
	// Youdao
	YoudaoEnable bool   `json:"youdaoEnable" yaml:"youdaoEnable"`
	AppID        string `json:"appId" yaml:"appId"`
	SecretKey    string `json:"secretKey" yaml:"secretKey"`
	YFrom        string `json:"yFrom" yaml:"yFrom"`
	YTo          string `json:"yTo" yaml:"yTo"`
	Audio        bool   `json:"audio" yaml:"audio"`

	// Microsoft
	MicrosoftEnable    bool   `json:"microsoftEnable" yaml:"microsoftEnable"`
	MicrosoftSecretKey string `json:"microsoftSecretKey" yaml:"microsoftSecretKey"`
	MicrosoftLocation  string `json:"microsoftLocation" yaml:"microsoftLocation"`
	MFrom              string `json:"mFrom" yaml:"mFrom"`
	MTo                string `json:"mTo" yaml:"mTo"`

	// Baidu
	BaiduEnable    bool   `json:"baiduEnable" yaml:"baiduEnable"`
	BaiduSecretKey string `json:"baiduSecretKey" yaml:"baiduSecretKey"`
	BaiduAppID     string `json:"baiduAppId" yaml:"baiduAppId"`
	BFrom          string `json:"bFrom" yaml:"bFrom"`
	BTo            string `json:"bTo" yaml:"bTo"`
}

// Defaults returns the default record: every provider disabled, every string empty.
func Defaults() Settings {
	return Settings{}
}

// field describes one settings key. Exactly one of str/flag is set.
type field struct {
	key    string
	env    string
	secret bool
	str    func(s *Settings) *string
	flag   func(s *Settings) *bool
}

// fields is the explicit key table, in display order.
var fields = []field{
	{key: "youdaoEnable", env: "NOTETRANS_YOUDAO_ENABLE", flag: func(s *Settings) *bool { return &s.YoudaoEnable }},
	{key: "appId", env: "NOTETRANS_APP_ID", str: func(s *Settings) *string { return &s.AppID }},
	{key: "secretKey", env: "NOTETRANS_SECRET_KEY", secret: true, str: func(s *Settings) *string { return &s.SecretKey }},
	{key: "yFrom", env: "NOTETRANS_Y_FROM", str: func(s *Settings) *string { return &s.YFrom }},
	{key: "yTo", env: "NOTETRANS_Y_TO", str: func(s *Settings) *string { return &s.YTo }},
	{key: "audio", env: "NOTETRANS_AUDIO", flag: func(s *Settings) *bool { return &s.Audio }},
	{key: "microsoftEnable", env: "NOTETRANS_MICROSOFT_ENABLE", flag: func(s *Settings) *bool { return &s.MicrosoftEnable }},
	{key: "microsoftSecretKey", env: "NOTETRANS_MICROSOFT_SECRET_KEY", secret: true, str: func(s *Settings) *string { return &s.MicrosoftSecretKey }},
	{key: "microsoftLocation", env: "NOTETRANS_MICROSOFT_LOCATION", str: func(s *Settings) *string { return &s.MicrosoftLocation }},
	{key: "mFrom", env: "NOTETRANS_M_FROM", str: func(s *Settings) *string { return &s.MFrom }},
	{key: "mTo", env: "NOTETRANS_M_TO", str: func(s *Settings) *string { return &s.MTo }},
	{key: "baiduEnable", env: "NOTETRANS_BAIDU_ENABLE", flag: func(s *Settings) *bool { return &s.BaiduEnable }},
	{key: "baiduSecretKey", env: "NOTETRANS_BAIDU_SECRET_KEY", secret: true, str: func(s *Settings) *string { return &s.BaiduSecretKey }},
	{key: "baiduAppId", env: "NOTETRANS_BAIDU_APP_ID", str: func(s *Settings) *string { return &s.BaiduAppID }},
	{key: "bFrom", env: "NOTETRANS_B_FROM", str: func(s *Settings) *string { return &s.BFrom }},
	{key: "bTo", env: "NOTETRANS_B_TO", str: func(s *Settings) *string { return &s.BTo }},
}

func lookupField(key string) (field, error) {
	for _, f := range fields {
		if f.key == key {
			return f, nil
		}
	}
	return field{}, fmt.Errorf("unknown settings key %q (known: %v)", key, Keys())
}

// Keys returns every known settings key in display order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.key)
	}
	return keys
}

// Get returns the string form of a key's value.
func (s Settings) Get(key string) (string, error) {
	f, err := lookupField(key)
	if err != nil {
		return "", err
	}
	if f.flag != nil {
		return strconv.FormatBool(*f.flag(&s)), nil
	}
	return *f.str(&s), nil
}

// Set assigns a key from its string form. Boolean keys accept anything
// strconv.ParseBool does.
func (s *Settings) Set(key, value string) error {
	f, err := lookupField(key)
	if err != nil {
		return err
	}
	if f.flag != nil {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("settings key %q expects a boolean: %w", key, err)
		}
		*f.flag(s) = b
		return nil
	}
	*f.str(s) = value
	return nil
}

// Map returns every key with its string value.
func (s Settings) Map() map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		v, _ := s.Get(f.key)
		out[f.key] = v
	}
	return out
}

// Masked is Map with secret values masked for display.
func (s Settings) Masked() map[string]string {
	out := s.Map()
	for _, f := range fields {
		if f.secret && out[f.key] != "" {
			out[f.key] = MaskKey(out[f.key])
		}
	}
	return out
}

// ApplyEnv overrides keys from NOTETRANS_* variables found by lookup
// (usually os.LookupEnv). Unset variables leave the stored value alone.
// It returns the keys that were overridden, sorted.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) ([]string, error) {
	var applied []string
	for _, f := range fields {
		v, ok := lookup(f.env)
		if !ok {
			continue
		}
		if err := s.Set(f.key, v); err != nil {
			return applied, fmt.Errorf("%s: %w", f.env, err)
		}
		applied = append(applied, f.key)
	}
	sort.Strings(applied)
	return applied, nil
}

// EnvVar returns the environment variable that overrides key, or "".
func EnvVar(key string) string {
	f, err := lookupField(key)
	if err != nil {
		return ""
	}
	return f.env
}

// MaskKey returns a masked version of a key/token for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
