package translate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProviderEnabled means no provider's enable flag is set. The translate
// command is simply not runnable; there is nothing to tell the user.
var ErrNoProviderEnabled = errors.New("no translation provider enabled")

// MissingCredentialsError lists required fields that are empty for enabled providers.
type MissingCredentialsError struct {
	Fields []string
}

// Error returns the user-facing message, e.g. "appId, secretKey can not be empty!".
func (e *MissingCredentialsError) Error() string {
	return strings.Join(e.Fields, ", ") + " can not be empty!"
}

// TranslationError is a failed request to one provider.
type TranslationError struct {
	Provider Provider
	Cause    error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("%s translate failed: %v", e.Provider, e.Cause)
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError is an error code reported by the provider in an otherwise
// well-formed response.
type ProviderError struct {
	Provider Provider
	Code     string
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s error code %s", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s error code %s: %s", e.Provider, e.Code, e.Message)
}
