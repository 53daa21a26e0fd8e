package language

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// AutoCode asks the provider to detect the source language itself.
const AutoCode = "auto"

// ErrUnknownLanguage is returned when a name is not in the requested table
var ErrUnknownLanguage = errors.New("unknown language")

// Language is a table entry: a human readable name and the provider code
type Language struct {
	Name string
	Code string
}

// IsAuto reports whether the provider has to detect the language
func (l Language) IsAuto() bool {
	return l.Code == AutoCode
}

// DisplayName returns the English name of the language. Languages with a
// real provider code are named after the code, so "twi" becomes "Akan".
// Auto-detected languages keep their table name.
func (l Language) DisplayName() string {
	if l.IsAuto() || l.Code == "" {
		return l.Name
	}

	tag, err := xlanguage.Parse(l.Code)
	if err != nil {
		return l.Name
	}

	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return l.Name
}

// PromptName returns the name to use when describing the language to a
// language model. The table name is more specific than the code for
// languages such as Twi, which shares the Akan code.
func (l Language) PromptName() string {
	if l.IsAuto() || l.DisplayName() == l.Name {
		return l.Name
	}
	return fmt.Sprintf("%s (%s)", l.Name, l.DisplayName())
}

func (l Language) String() string {
	return fmt.Sprintf("%s [%s]", l.Name, l.Code)
}

var sources = map[string]Language{
	"bemba":       {Name: "Bemba", Code: AutoCode},
	"bem":         {Name: "Bemba", Code: AutoCode},
	"fon":         {Name: "Fon", Code: AutoCode},
	"hausa":       {Name: "Hausa", Code: "ha"},
	"hau":         {Name: "Hausa", Code: "ha"},
	"igbo":        {Name: "Igbo", Code: "ig"},
	"ibo":         {Name: "Igbo", Code: "ig"},
	"kinyarwanda": {Name: "Kinyarwanda", Code: "rw"},
	"kin":         {Name: "Kinyarwanda", Code: "rw"},
	"twi":         {Name: "Twi", Code: "ak"},
	"yoruba":      {Name: "Yoruba", Code: "yo"},
	"yor":         {Name: "Yoruba", Code: "yo"},
	"swahili":     {Name: "Swahili", Code: "sw"},
	"swa":         {Name: "Swahili", Code: "sw"},
	"wolof":       {Name: "Wolof", Code: AutoCode},
	"wol":         {Name: "Wolof", Code: AutoCode},
	"zulu":        {Name: "Zulu", Code: "zu"},
	"zul":         {Name: "Zulu", Code: "zu"},
}

var pivots = map[string]Language{
	"english": {Name: "English", Code: "en"},
	"french":  {Name: "French", Code: "fr"},
}

// DefaultPivot is used when no pivot language is given
const DefaultPivot = "english"

// LookupSource returns the source language registered under name
func LookupSource(name string) (Language, error) {
	return lookup(sources, "source", name)
}

// LookupPivot returns the pivot language registered under name
func LookupPivot(name string) (Language, error) {
	return lookup(pivots, "pivot", name)
}

func lookup(table map[string]Language, kind, name string) (Language, error) {
	if lang, ok := table[name]; ok {
		return lang, nil
	}
	return Language{}, fmt.Errorf("%w: %s language %q (choose from %s)",
		ErrUnknownLanguage, kind, name, strings.Join(names(table), ", "))
}

// SourceNames returns every accepted source language name, sorted
func SourceNames() []string {
	return names(sources)
}

// PivotNames returns every accepted pivot language name, sorted
func PivotNames() []string {
	return names(pivots)
}

func names(table map[string]Language) []string {
	result := make([]string, 0, len(table))
	for name := range table {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// PrintTable writes both tables in a human readable layout
func PrintTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "SOURCE\tCODE\tPROVIDER LANGUAGE")
	for _, name := range SourceNames() {
		lang := sources[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, lang.Code, providerLanguage(lang))
	}

	fmt.Fprintln(tw, "\t\t")
	fmt.Fprintln(tw, "PIVOT\tCODE\tPROVIDER LANGUAGE")
	for _, name := range PivotNames() {
		lang := pivots[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, lang.Code, providerLanguage(lang))
	}

	return tw.Flush()
}

func providerLanguage(l Language) string {
	if l.IsAuto() {
		return "detected by provider"
	}
	return l.DisplayName()
}
