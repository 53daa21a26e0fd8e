package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bregydoc/gtranslate"

	"codeberg.org/snonux/transquery/internal/language"
)

// translateFunc matches gtranslate.TranslateWithParams
type translateFunc func(text string, params gtranslate.TranslationParams) (string, error)

// GoogleTranslator uses the keyless Google Translate web endpoint
type GoogleTranslator struct {
	translate translateFunc
	timeout   time.Duration
}

// NewGoogleTranslator creates a Google translator
func NewGoogleTranslator(config *Config) *GoogleTranslator {
	return &GoogleTranslator{
		translate: gtranslate.TranslateWithParams,
		timeout:   config.Timeout,
	}
}

// Name returns the provider name
func (g *GoogleTranslator) Name() string {
	return ProviderGoogle
}

type googleResult struct {
	text string
	err  error
}

// Translate sends text to Google Translate. The source code is passed
// through unchanged, so "auto" lets Google detect the language.
func (g *GoogleTranslator) Translate(ctx context.Context, text string, from, to language.Language) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	params := gtranslate.TranslationParams{
		From: from.Code,
		To:   to.Code,
	}

	// gtranslate takes no context; buffered so the call can finish after we stop waiting
	done := make(chan googleResult, 1)
	go func() {
		translated, err := g.translate(text, params)
		done <- googleResult{text: translated, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("Google Translate error: %w", res.err)
		}
		translated := strings.TrimSpace(res.text)
		if translated == "" {
			return "", ErrEmptyTranslation
		}
		return translated, nil
	}
}
