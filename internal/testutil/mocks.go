package testutil

import (
	"context"
	"fmt"

	"codeberg.org/snonux/transquery/internal/language"
)

// MockTranslator mocks a translation provider
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error

	// Err, when set, is returned for every call
	Err error

	Calls []string
}

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text string, from, to language.Language) (string, error) {
	call := fmt.Sprintf("Translate: %s (%s->%s)", text, from.Code, to.Code)
	m.Calls = append(m.Calls, call)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if m.Err != nil {
		return "", m.Err
	}

	if err, ok := m.Errors[text]; ok {
		return "", err
	}

	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}

	if text == "" {
		return "", nil
	}

	// Default mock translation
	return fmt.Sprintf("mock translation of %s", text), nil
}

// Name returns the mock provider name
func (m *MockTranslator) Name() string {
	return "mock"
}
