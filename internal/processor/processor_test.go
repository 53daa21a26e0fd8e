package processor

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"codeberg.org/snonux/transquery/internal/cli"
	"codeberg.org/snonux/transquery/internal/journal"
	"codeberg.org/snonux/transquery/internal/sheet"
	"codeberg.org/snonux/transquery/internal/testutil"
)

// newTestProcessor returns a processor translating dir/in into dir/out
// with output captured in the returned buffers
func newTestProcessor(t *testing.T, in, out string, mock *testutil.MockTranslator) (*Processor, *cli.Flags, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	flags := cli.NewFlags()
	flags.QuestionsFile = in
	flags.OutputFile = out
	flags.Source = "hausa"

	var stdout, stderr bytes.Buffer
	p := NewProcessor(flags, mock)
	p.SetOutput(&stdout, &stderr)
	return p, flags, &stdout, &stderr
}

func TestNewProcessor(t *testing.T) {
	flags := cli.NewFlags()
	mock := &testutil.MockTranslator{}
	p := NewProcessor(flags, mock)

	if p == nil {
		t.Fatal("NewProcessor returned nil")
	}

	if p.flags != flags {
		t.Error("Processor flags not set correctly")
	}

	if p.translator != mock {
		t.Error("Translator not set correctly")
	}

	if p.out == nil || p.errOut == nil {
		t.Error("Output writers not initialized")
	}
}

func TestRun_TranslatesEveryRow(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.csv", []string{"Yaya kake?", "Ina kwana?", "Me kake so?"})
	out := filepath.Join(dir, "translated.csv")

	mock := &testutil.MockTranslator{
		Translations: map[string]string{
			"Yaya kake?": "How are you?",
			"Ina kwana?": "Good morning?",
		},
	}
	p, _, stdout, _ := newTestProcessor(t, in, out, mock)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	testutil.AssertFileExists(t, out)

	if summary.Total != 3 || summary.Translated != 3 || summary.Failed != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	records := testutil.ReadRecords(t, out, ',')
	expected := [][]string{
		{"ID", testutil.QuestionColumn, cli.DefaultOutputColumn},
		{"1", "Yaya kake?", "How are you?"},
		{"2", "Ina kwana?", "Good morning?"},
		{"3", "Me kake so?", "mock translation of Me kake so?"},
	}
	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Output = %q\nwant %q", records, expected)
	}

	// Rows are translated in order from the source code to the pivot code
	wantCalls := []string{
		"Translate: Yaya kake? (ha->en)",
		"Translate: Ina kwana? (ha->en)",
		"Translate: Me kake so? (ha->en)",
	}
	if !reflect.DeepEqual(mock.Calls, wantCalls) {
		t.Errorf("Calls = %v, want %v", mock.Calls, wantCalls)
	}

	for _, want := range []string{"Translating 1/3", "Translating 3/3", "Saving to file", "Total questions: 3"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("Expected output to contain %q\n%s", want, stdout.String())
		}
	}
}

func TestRun_HausaExample(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "test.csv")
	testutil.CreateTestFile(t, in, []byte(testutil.QuestionColumn+"\nYaya kake?\n"))
	out := filepath.Join(dir, "translated.csv")

	p, flags, _, _ := newTestProcessor(t, in, out, &testutil.MockTranslator{})
	flags.Pivot = "english"

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	result, err := sheet.Read(out)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if result.Len() != 1 || len(result.Header) != 2 {
		t.Fatalf("Expected 1 row and 2 columns, got %d rows, header %v", result.Len(), result.Header)
	}

	translated, err := result.Column(cli.DefaultOutputColumn)
	if err != nil {
		t.Fatal(err)
	}
	if translated[0] == "" {
		t.Error("Expected a non-empty translation")
	}
}

func TestRun_TSVAndFrenchPivot(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.tsv", []string{"Kedu ka i mere?"})
	out := filepath.Join(dir, "translated.tsv")

	mock := &testutil.MockTranslator{Translations: map[string]string{"Kedu ka i mere?": "Comment vas-tu ?"}}
	p, flags, _, _ := newTestProcessor(t, in, out, mock)
	flags.Source = "ibo"
	flags.Pivot = "french"

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	records := testutil.ReadRecords(t, out, '\t')
	if len(records) != 2 || records[1][2] != "Comment vas-tu ?" {
		t.Errorf("Unexpected TSV output: %q", records)
	}
	testutil.AssertFileContains(t, out, "ID\t"+testutil.QuestionColumn+"\t")

	if mock.Calls[0] != "Translate: Kedu ka i mere? (ig->fr)" {
		t.Errorf("Unexpected call %q", mock.Calls[0])
	}
}

func TestRun_CSVToXLSX(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.csv", []string{"Habari yako?", "Unaitwa nani?"})
	out := filepath.Join(dir, "translated.xlsx")

	p, flags, _, _ := newTestProcessor(t, in, out, &testutil.MockTranslator{})
	flags.Source = "swahili"

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	result, err := sheet.Read(out)
	if err != nil {
		t.Fatalf("Failed to read workbook: %v", err)
	}
	translated, err := result.Column(cli.DefaultOutputColumn)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(translated, []string{"mock translation of Habari yako?", "mock translation of Unaitwa nani?"}) {
		t.Errorf("Translations = %q", translated)
	}
}

func TestRun_OverwritesExistingOutputColumn(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "questions.csv")
	testutil.CreateTestFile(t, in, []byte(testutil.QuestionColumn+","+cli.DefaultOutputColumn+"\nSawubona,stale\n"))
	out := filepath.Join(dir, "out.csv")

	p, flags, _, _ := newTestProcessor(t, in, out, &testutil.MockTranslator{Translations: map[string]string{"Sawubona": "Hello"}})
	flags.Source = "zulu"

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	records := testutil.ReadRecords(t, out, ',')
	expected := [][]string{{testutil.QuestionColumn, cli.DefaultOutputColumn}, {"Sawubona", "Hello"}}
	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Output = %q, want %q", records, expected)
	}
}

func TestRun_EmptyCellsAreNotSent(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.csv", []string{"Yaya kake?", "", "   "})
	out := filepath.Join(dir, "out.csv")

	mock := &testutil.MockTranslator{}
	p, _, _, _ := newTestProcessor(t, in, out, mock)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(mock.Calls) != 1 {
		t.Errorf("Expected 1 provider call, got %d", len(mock.Calls))
	}
	if summary.Empty != 2 || summary.Translated != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	records := testutil.ReadRecords(t, out, ',')
	if len(records) != 4 || records[2][2] != "" || records[3][2] != "" {
		t.Errorf("Unexpected output: %q", records)
	}
}

func TestRun_KeepOriginalOnFailure(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.csv", []string{"Yaya kake?", "Ina kwana?"})
	out := filepath.Join(dir, "out.csv")

	mock := &testutil.MockTranslator{
		Errors: map[string]error{"Ina kwana?": errors.New("status 429")},
	}
	p, flags, _, stderr := newTestProcessor(t, in, out, mock)
	flags.OnError = cli.OnErrorKeepOriginal

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Translated != 1 || summary.KeptOriginal != 1 || summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	records := testutil.ReadRecords(t, out, ',')
	if records[2][2] != "Ina kwana?" {
		t.Errorf("Expected original text to be kept, got %q", records[2][2])
	}
	if !strings.Contains(stderr.String(), "row 2") || !strings.Contains(stderr.String(), "status 429") {
		t.Errorf("Expected warning for row 2, got %q", stderr.String())
	}
}

func TestRun_FailPolicyStopsWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.csv", []string{"Yaya kake?", "Ina kwana?", "Me kake so?"})
	out := filepath.Join(dir, "out.csv")

	providerErr := errors.New("status 503")
	mock := &testutil.MockTranslator{Errors: map[string]error{"Ina kwana?": providerErr}}
	p, flags, _, _ := newTestProcessor(t, in, out, mock)
	flags.OnError = cli.OnErrorFail

	_, err := p.Run(context.Background())
	if !errors.Is(err, providerErr) {
		t.Fatalf("Expected provider error, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Errorf("Expected error to name row 2, got %v", err)
	}

	if len(mock.Calls) != 2 {
		t.Errorf("Expected loop to stop after 2 calls, got %d", len(mock.Calls))
	}
	testutil.AssertFileNotExists(t, out)
}

func TestRun_EmptyProviderResultIsFailure(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.csv", []string{"Yaya kake?"})
	out := filepath.Join(dir, "out.csv")

	mock := &testutil.MockTranslator{Translations: map[string]string{"Yaya kake?": ""}}
	p, _, _, _ := newTestProcessor(t, in, out, mock)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.KeptOriginal != 1 {
		t.Errorf("Expected empty result to keep the original, got %+v", summary)
	}
}

func TestRun_MissingQuestionsFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")
	mock := &testutil.MockTranslator{}

	p, _, _, _ := newTestProcessor(t, filepath.Join(dir, "missing.csv"), out, mock)

	_, err := p.Run(context.Background())
	if !errors.Is(err, ErrQuestionsFileNotFound) {
		t.Errorf("Expected ErrQuestionsFileNotFound, got %v", err)
	}
	if len(mock.Calls) != 0 {
		t.Error("Provider called for missing input")
	}
	testutil.AssertFileNotExists(t, out)
}

func TestRun_MissingQuestionColumn(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "questions.csv")
	testutil.CreateTestFile(t, in, []byte("ID,Question\n1,Yaya kake?\n"))

	p, _, _, _ := newTestProcessor(t, in, filepath.Join(dir, "out.csv"), &testutil.MockTranslator{})

	if _, err := p.Run(context.Background()); !errors.Is(err, sheet.ErrColumnNotFound) {
		t.Errorf("Expected ErrColumnNotFound, got %v", err)
	}
}

func TestRun_UnsupportedOutputFormat(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.csv", []string{"Yaya kake?"})
	mock := &testutil.MockTranslator{}

	p, _, _, _ := newTestProcessor(t, in, filepath.Join(dir, "out.json"), mock)

	if _, err := p.Run(context.Background()); !errors.Is(err, sheet.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if len(mock.Calls) != 0 {
		t.Error("Provider called despite unsupported output format")
	}
}

func TestRun_CustomColumns(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "questions.csv")
	testutil.CreateTestFile(t, in, []byte("Swali\nHabari?\n"))
	out := filepath.Join(dir, "out.csv")

	p, flags, _, _ := newTestProcessor(t, in, out, &testutil.MockTranslator{Translations: map[string]string{"Habari?": "News?"}})
	flags.Source = "swa"
	flags.InputColumn = "Swali"
	flags.OutputColumn = "Question"

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	records := testutil.ReadRecords(t, out, ',')
	if !reflect.DeepEqual(records, [][]string{{"Swali", "Question"}, {"Habari?", "News?"}}) {
		t.Errorf("Output = %q", records)
	}
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.csv", []string{"Yaya kake?"})
	out := filepath.Join(dir, "out.csv")

	p, flags, _, _ := newTestProcessor(t, in, out, &testutil.MockTranslator{})
	flags.OnError = cli.OnErrorKeepOriginal

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	testutil.AssertFileNotExists(t, out)
}

func TestRun_Journal(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.csv", []string{"Yaya kake?", "", "Ina kwana?"})
	out := filepath.Join(dir, "out.csv")

	j, err := journal.Open(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Skipf("sqlite3 driver not available: %v", err)
	}
	defer j.Close()

	mock := &testutil.MockTranslator{
		Translations: map[string]string{"Yaya kake?": "How are you?"},
		Errors:       map[string]error{"Ina kwana?": errors.New("timeout")},
	}
	p, _, _, _ := newTestProcessor(t, in, out, mock)
	p.SetJournal(j)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	entries, err := j.Rows(1)
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	expected := []journal.Entry{
		{RowIndex: 0, Original: "Yaya kake?", Translated: "How are you?"},
		{RowIndex: 1, Original: "", Translated: ""},
		{RowIndex: 2, Original: "Ina kwana?", Translated: "Ina kwana?", Error: "timeout"},
	}
	if !reflect.DeepEqual(entries, expected) {
		t.Errorf("Journal rows = %+v\nwant %+v", entries, expected)
	}

	total, failed, finished, err := j.RunCounts(1)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || failed != 1 || !finished {
		t.Errorf("RunCounts() = %d, %d, %v", total, failed, finished)
	}
}

func TestRun_FailPolicyJournalsNoTranslation(t *testing.T) {
	dir := t.TempDir()
	in := testutil.CreateQuestionsFile(t, dir, "questions.csv", []string{"Yaya kake?"})
	out := filepath.Join(dir, "out.csv")

	j, err := journal.Open(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Skipf("sqlite3 driver not available: %v", err)
	}
	defer j.Close()

	mock := &testutil.MockTranslator{Err: errors.New("status 503")}
	p, flags, _, _ := newTestProcessor(t, in, out, mock)
	flags.OnError = cli.OnErrorFail
	p.SetJournal(j)

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("Expected run to fail")
	}

	entries, err := j.Rows(1)
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	expected := []journal.Entry{{RowIndex: 0, Original: "Yaya kake?", Translated: "", Error: "status 503"}}
	if !reflect.DeepEqual(entries, expected) {
		t.Errorf("Journal rows = %+v\nwant %+v", entries, expected)
	}
}

func TestRun_ExtraCellsRejected(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "questions.csv")
	testutil.CreateTestFile(t, in, []byte(testutil.QuestionColumn+"\nYaya kake?,extra note\n"))
	out := filepath.Join(dir, "out.csv")
	mock := &testutil.MockTranslator{}

	p, _, _, _ := newTestProcessor(t, in, out, mock)

	if _, err := p.Run(context.Background()); !errors.Is(err, sheet.ErrExtraCells) {
		t.Errorf("Expected ErrExtraCells, got %v", err)
	}
	if len(mock.Calls) != 0 {
		t.Error("Provider called for a malformed sheet")
	}
	testutil.AssertFileNotExists(t, out)
}
