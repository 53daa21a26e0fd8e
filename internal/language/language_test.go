package language

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	xlanguage "golang.org/x/text/language"
)

func TestLookupSource(t *testing.T) {
	tests := []struct {
		name     string
		expected Language
	}{
		{"hausa", Language{Name: "Hausa", Code: "ha"}},
		{"hau", Language{Name: "Hausa", Code: "ha"}},
		{"twi", Language{Name: "Twi", Code: "ak"}},
		{"kin", Language{Name: "Kinyarwanda", Code: "rw"}},
		{"bemba", Language{Name: "Bemba", Code: AutoCode}},
		{"wol", Language{Name: "Wolof", Code: AutoCode}},
		{"zulu", Language{Name: "Zulu", Code: "zu"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LookupSource(tt.name)
			if err != nil {
				t.Fatalf("LookupSource(%q) failed: %v", tt.name, err)
			}
			if got != tt.expected {
				t.Errorf("LookupSource(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestLookupRejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"", "Hausa", "english", "amharic", "ha", " twi"} {
		if _, err := LookupSource(name); !errors.Is(err, ErrUnknownLanguage) {
			t.Errorf("LookupSource(%q) error = %v, want ErrUnknownLanguage", name, err)
		}
	}

	for _, name := range []string{"", "English", "german", "en", "hausa"} {
		if _, err := LookupPivot(name); !errors.Is(err, ErrUnknownLanguage) {
			t.Errorf("LookupPivot(%q) error = %v, want ErrUnknownLanguage", name, err)
		}
	}
}

func TestLookupErrorListsChoices(t *testing.T) {
	_, err := LookupPivot("german")
	if err == nil {
		t.Fatal("Expected error for unknown pivot")
	}
	if !strings.Contains(err.Error(), "english, french") {
		t.Errorf("Expected error to list choices, got: %v", err)
	}
}

func TestEveryNameIsAccepted(t *testing.T) {
	if len(SourceNames()) != 18 {
		t.Errorf("Expected 18 source names, got %d", len(SourceNames()))
	}
	for _, name := range SourceNames() {
		if _, err := LookupSource(name); err != nil {
			t.Errorf("LookupSource(%q) failed: %v", name, err)
		}
	}

	pivotNames := PivotNames()
	if len(pivotNames) != 2 || pivotNames[0] != "english" || pivotNames[1] != "french" {
		t.Errorf("PivotNames() = %v, want [english french]", pivotNames)
	}
	for _, name := range pivotNames {
		if _, err := LookupPivot(name); err != nil {
			t.Errorf("LookupPivot(%q) failed: %v", name, err)
		}
	}

	if _, err := LookupPivot(DefaultPivot); err != nil {
		t.Errorf("Default pivot %q not in table: %v", DefaultPivot, err)
	}
}

func TestCodesAreValidTags(t *testing.T) {
	for _, name := range append(SourceNames(), PivotNames()...) {
		lang, err := LookupSource(name)
		if err != nil {
			lang, _ = LookupPivot(name)
		}
		if lang.IsAuto() {
			continue
		}
		if _, err := xlanguage.ParseBase(lang.Code); err != nil {
			t.Errorf("%s: code %q is not a valid language code: %v", name, lang.Code, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		lang     Language
		expected string
	}{
		{Language{Name: "Hausa", Code: "ha"}, "Hausa"},
		{Language{Name: "Twi", Code: "ak"}, "Akan"},
		{Language{Name: "French", Code: "fr"}, "French"},
		{Language{Name: "Fon", Code: AutoCode}, "Fon"},
	}

	for _, tt := range tests {
		t.Run(tt.lang.Name, func(t *testing.T) {
			if got := tt.lang.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPromptName(t *testing.T) {
	twi, _ := LookupSource("twi")
	if got := twi.PromptName(); got != "Twi (Akan)" {
		t.Errorf("PromptName() = %q, want %q", got, "Twi (Akan)")
	}

	hausa, _ := LookupSource("hausa")
	if got := hausa.PromptName(); got != "Hausa" {
		t.Errorf("PromptName() = %q, want %q", got, "Hausa")
	}

	wolof, _ := LookupSource("wolof")
	if got := wolof.PromptName(); got != "Wolof" {
		t.Errorf("PromptName() = %q, want %q", got, "Wolof")
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintTable(&buf); err != nil {
		t.Fatalf("PrintTable failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"SOURCE", "PIVOT", "kinyarwanda", "french", "detected by provider", "Akan"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected table to contain %q\n%s", want, out)
		}
	}
}
