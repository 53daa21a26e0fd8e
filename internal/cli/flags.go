package cli

import (
	"codeberg.org/snonux/transquery/internal/language"
	"codeberg.org/snonux/transquery/internal/translation"
)

// Column names of the questions spreadsheet
const (
	DefaultInputColumn  = "Original question in African language"
	DefaultOutputColumn = "Translated Question in English"
)

// Failure policies for rows the provider could not translate
const (
	OnErrorKeepOriginal = "keep-original"
	OnErrorFail         = "fail"
)

// OnErrorPolicies lists every accepted failure policy
func OnErrorPolicies() []string {
	return []string{OnErrorKeepOriginal, OnErrorFail}
}

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile       string
	QuestionsFile string
	OutputFile    string
	Source        string
	Pivot         string
	ListLanguages bool
	ListModels    bool

	// Columns
	InputColumn  string
	OutputColumn string

	// Provider flags
	Provider               string
	OnError                string
	MaxConsecutiveFailures int
	OpenAIModel            string
	GeminiModel            string

	// Journal is the SQLite journal path; empty disables journaling
	Journal string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	defaults := translation.DefaultConfig()

	return &Flags{
		Pivot:                  language.DefaultPivot,
		InputColumn:            DefaultInputColumn,
		OutputColumn:           DefaultOutputColumn,
		Provider:               defaults.Provider,
		OnError:                OnErrorKeepOriginal,
		MaxConsecutiveFailures: 5,
		OpenAIModel:            defaults.OpenAIModel,
		GeminiModel:            defaults.GeminiModel,
	}
}
