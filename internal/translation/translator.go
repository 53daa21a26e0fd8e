package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"codeberg.org/snonux/transquery/internal/language"
)

// ErrEmptyTranslation is returned when a provider answers without text
var ErrEmptyTranslation = errors.New("no translation returned")

// Translator translates one piece of text between two languages
type Translator interface {
	// Translate returns text rendered in the target language
	Translate(ctx context.Context, text string, from, to language.Language) (string, error)

	// Name returns the provider name
	Name() string
}

// Provider names accepted by NewTranslator
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Providers lists every supported provider name
func Providers() []string {
	return []string{ProviderGoogle, ProviderOpenAI, ProviderGemini}
}

// Config holds the settings for all providers
type Config struct {
	Provider string

	// OpenAI settings
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	// Gemini settings
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string

	// HTTPClient is used by the OpenAI and Gemini clients when set
	HTTPClient *http.Client

	// Timeout bounds a single Google Translate call
	Timeout time.Duration
}

// DefaultConfig returns the default provider configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGoogle,
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-2.0-flash",
		Timeout:     30 * time.Second,
	}
}

// NewTranslator creates the provider selected by config
func NewTranslator(config *Config) (Translator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGoogle:
		return NewGoogleTranslator(config), nil

	case ProviderOpenAI:
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAITranslator(config), nil

	case ProviderGemini:
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiTranslator(context.Background(), config)

	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
}

// buildPrompt is shared by the language model providers
func buildPrompt(text string, from, to language.Language) string {
	source := from.PromptName()
	if from.IsAuto() {
		source = fmt.Sprintf("%s (an African language)", from.Name)
	}

	return fmt.Sprintf("Translate the following %s question into %s. "+
		"Respond with only the %s translation, nothing else.\n\n%s",
		source, to.DisplayName(), to.DisplayName(), text)
}

// cleanResponse trims whitespace and quotes a model may wrap the answer in
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
