package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"codeberg.org/snonux/transquery/internal/cli"
	"codeberg.org/snonux/transquery/internal/journal"
	"codeberg.org/snonux/transquery/internal/language"
	"codeberg.org/snonux/transquery/internal/sheet"
	"codeberg.org/snonux/transquery/internal/translation"
)

// ErrQuestionsFileNotFound is returned before anything else when the
// input file does not exist
var ErrQuestionsFileNotFound = errors.New("questions file does not exist")

// Summary counts the outcome of a run
type Summary struct {
	Total        int
	Translated   int
	Failed       int
	KeptOriginal int
	Empty        int
}

// Processor handles the main translation loop
type Processor struct {
	flags      *cli.Flags
	translator translation.Translator
	journal    *journal.Journal

	out    io.Writer
	errOut io.Writer
}

// NewProcessor creates a new processor that translates with translator
func NewProcessor(flags *cli.Flags, translator translation.Translator) *Processor {
	return &Processor{
		flags:      flags,
		translator: translator,
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
}

// SetJournal records every row of the following runs in j
func (p *Processor) SetJournal(j *journal.Journal) {
	p.journal = j
}

// SetOutput redirects progress and warning output
func (p *Processor) SetOutput(out, errOut io.Writer) {
	p.out = out
	p.errOut = errOut
}

// Run translates the questions file into the output file
func (p *Processor) Run(ctx context.Context) (*Summary, error) {
	if _, err := os.Stat(p.flags.QuestionsFile); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrQuestionsFileNotFound, p.flags.QuestionsFile)
	}

	source, err := language.LookupSource(p.flags.Source)
	if err != nil {
		return nil, err
	}
	pivot, err := language.LookupPivot(p.flags.Pivot)
	if err != nil {
		return nil, err
	}

	// Fail on a bad output extension before spending any provider calls
	if _, err := sheet.FormatFromPath(p.flags.OutputFile); err != nil {
		return nil, err
	}

	questions, err := sheet.Read(p.flags.QuestionsFile)
	if err != nil {
		return nil, err
	}

	texts, err := questions.Column(p.flags.InputColumn)
	if err != nil {
		return nil, fmt.Errorf("questions file %s: %w", p.flags.QuestionsFile, err)
	}

	runID := p.startRun()

	summary := &Summary{Total: len(texts)}
	translations := make([]string, len(texts))

	fmt.Fprintf(p.out, "Starting translation of %d questions from %s to %s using %s...\n",
		len(texts), source, pivot, p.translator.Name())

	runErr := p.translateRows(ctx, texts, translations, source, pivot, runID, summary)
	p.finishRun(runID, summary)
	if runErr != nil {
		return summary, runErr
	}

	if err := questions.SetColumn(p.flags.OutputColumn, translations); err != nil {
		return summary, err
	}

	fmt.Fprintf(p.out, "Saving to file %s\n", p.flags.OutputFile)
	if err := sheet.Write(p.flags.OutputFile, questions); err != nil {
		return summary, err
	}

	p.printSummary(summary)
	return summary, nil
}

// translateRows fills translations in row order and applies the failure policy
func (p *Processor) translateRows(ctx context.Context, texts, translations []string, source, pivot language.Language, runID int64, summary *Summary) error {
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("translation interrupted at row %d: %w", i+1, err)
		}

		if strings.TrimSpace(text) == "" {
			summary.Empty++
			p.recordRow(runID, i, text, "", nil)
			continue
		}

		fmt.Fprintf(p.out, "Translating %d/%d\n", i+1, len(texts))

		translated, err := p.translator.Translate(ctx, text, source, pivot)
		if err == nil && translated == "" {
			err = translation.ErrEmptyTranslation
		}

		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("translation interrupted at row %d: %w", i+1, ctx.Err())
			}

			summary.Failed++

			// Nothing is written under the fail policy, so the row has no translation
			if p.flags.OnError == cli.OnErrorFail {
				p.recordRow(runID, i, text, "", err)
				return fmt.Errorf("row %d: translation failed: %w", i+1, err)
			}

			p.recordRow(runID, i, text, text, err)
			fmt.Fprintf(p.errOut, "  Warning: row %d: translation failed, keeping original text: %v\n", i+1, err)
			translations[i] = text
			summary.KeptOriginal++
			continue
		}

		translations[i] = translated
		summary.Translated++
		p.recordRow(runID, i, text, translated, nil)
	}

	return nil
}

func (p *Processor) startRun() int64 {
	if p.journal == nil {
		return 0
	}

	runID, err := p.journal.StartRun(journal.Run{
		Input:    p.flags.QuestionsFile,
		Output:   p.flags.OutputFile,
		Source:   p.flags.Source,
		Pivot:    p.flags.Pivot,
		Provider: p.translator.Name(),
	})
	if err != nil {
		fmt.Fprintf(p.errOut, "Warning: journal disabled: %v\n", err)
		p.journal = nil
		return 0
	}
	return runID
}

func (p *Processor) recordRow(runID int64, index int, original, translated string, rowErr error) {
	if p.journal == nil {
		return
	}

	entry := journal.Entry{
		RowIndex:   index,
		Original:   original,
		Translated: translated,
	}
	if rowErr != nil {
		entry.Error = rowErr.Error()
	}

	if err := p.journal.RecordRow(runID, entry); err != nil {
		fmt.Fprintf(p.errOut, "  Warning: %v\n", err)
	}
}

func (p *Processor) finishRun(runID int64, summary *Summary) {
	if p.journal == nil {
		return
	}

	if err := p.journal.FinishRun(runID, summary.Total, summary.Failed); err != nil {
		fmt.Fprintf(p.errOut, "Warning: %v\n", err)
	}
}

func (p *Processor) printSummary(summary *Summary) {
	fmt.Fprintf(p.out, "\n=== Translation Summary ===\n")
	fmt.Fprintf(p.out, "Total questions: %d\n", summary.Total)
	fmt.Fprintf(p.out, "Translated: %d\n", summary.Translated)
	if summary.Empty > 0 {
		fmt.Fprintf(p.out, "Empty (skipped): %d\n", summary.Empty)
	}
	if summary.KeptOriginal > 0 {
		fmt.Fprintf(p.out, "Failed (original kept): %d\n", summary.KeptOriginal)
	}
	fmt.Fprintf(p.out, "===========================\n")
}
