package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/transquery/internal"
	"codeberg.org/snonux/transquery/internal/language"
	"codeberg.org/snonux/transquery/internal/translation"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transquery",
		Short: "Translate African language question sheets into English or French",
		Long: `transquery translates a spreadsheet of questions written in an African
language into a pivot language (English or French).

It reads the column "Original question in African language" from a CSV,
TSV or XLSX file, translates every row with the selected provider and
writes the result to the column "Translated Question in English".

Examples:
  transquery --questions_file_path test.csv --source hausa --pivot english --output_file_path hausa_translated.csv
  transquery --questions_file_path twi.tsv --source twi --output_file_path twi_translated.tsv --provider openai
  transquery --list-languages
  transquery --list-models`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.transquery.yaml)")

	// Input and output
	cmd.Flags().StringVar(&flags.QuestionsFile, "questions_file_path", "", "File path to the file containing the source language data (.csv, .tsv or .xlsx)")
	cmd.Flags().StringVar(&flags.OutputFile, "output_file_path", "", "Path to store the translated file (.csv, .tsv or .xlsx)")
	cmd.Flags().Var(newChoiceValue(&flags.Source, language.SourceNames()), "source",
		fmt.Sprintf("Original language of the data to be translated (%s)", strings.Join(language.SourceNames(), ", ")))
	cmd.Flags().Var(newChoiceValue(&flags.Pivot, language.PivotNames()), "pivot",
		fmt.Sprintf("Language in which to make translation to (%s)", strings.Join(language.PivotNames(), ", ")))
	cmd.Flags().StringVar(&flags.InputColumn, "input-column", flags.InputColumn, "Column holding the questions to translate")
	cmd.Flags().StringVar(&flags.OutputColumn, "output-column", flags.OutputColumn, "Column receiving the translations (added or overwritten)")
	cmd.Flags().BoolVar(&flags.ListLanguages, "list-languages", false, "List the accepted source and pivot languages and exit")

	// Provider flags
	cmd.Flags().Var(newChoiceValue(&flags.Provider, translation.Providers()), "provider",
		fmt.Sprintf("Translation provider (%s)", strings.Join(translation.Providers(), ", ")))
	cmd.Flags().Var(newChoiceValue(&flags.OnError, OnErrorPolicies()), "on-error",
		"What to do when a row cannot be translated: keep-original writes the original text, fail stops the run")
	cmd.Flags().IntVar(&flags.MaxConsecutiveFailures, "max-consecutive-failures", flags.MaxConsecutiveFailures, "Stop calling the provider after this many consecutive failures (0 disables)")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model used by the openai provider")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model used by the gemini provider")
	cmd.Flags().StringVar(&flags.Journal, "journal", "", "Record every translated row in this SQLite database")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List the OpenAI chat models available with your API key and exit")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("translate.source", cmd.Flags().Lookup("source"))
	viper.BindPFlag("translate.pivot", cmd.Flags().Lookup("pivot"))
	viper.BindPFlag("translate.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translate.on_error", cmd.Flags().Lookup("on-error"))
	viper.BindPFlag("translate.max_consecutive_failures", cmd.Flags().Lookup("max-consecutive-failures"))
	viper.BindPFlag("translate.journal", cmd.Flags().Lookup("journal"))
	viper.BindPFlag("columns.input", cmd.Flags().Lookup("input-column"))
	viper.BindPFlag("columns.output", cmd.Flags().Lookup("output-column"))
	viper.BindPFlag("openai.model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("gemini.model", cmd.Flags().Lookup("gemini-model"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".transquery" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".transquery")
	}

	// Environment variables, e.g. TRANSQUERY_TRANSLATE_PROVIDER
	viper.SetEnvPrefix("TRANSQUERY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ResolveFlags fills flags the user did not set on the command line from
// the environment and the config file
func ResolveFlags(flags *Flags) {
	stringKeys := map[string]*string{
		"translate.source":   &flags.Source,
		"translate.pivot":    &flags.Pivot,
		"translate.provider": &flags.Provider,
		"translate.on_error": &flags.OnError,
		"translate.journal":  &flags.Journal,
		"columns.input":      &flags.InputColumn,
		"columns.output":     &flags.OutputColumn,
		"openai.model":       &flags.OpenAIModel,
		"gemini.model":       &flags.GeminiModel,
	}

	for key, target := range stringKeys {
		if viper.IsSet(key) {
			*target = viper.GetString(key)
		}
	}

	if viper.IsSet("translate.max_consecutive_failures") {
		flags.MaxConsecutiveFailures = viper.GetInt("translate.max_consecutive_failures")
	}
}

// Validate checks the resolved flags before any file is touched
func Validate(flags *Flags) error {
	var missing []string
	if flags.QuestionsFile == "" {
		missing = append(missing, "--questions_file_path")
	}
	if flags.Source == "" {
		missing = append(missing, "--source")
	}
	if flags.OutputFile == "" {
		missing = append(missing, "--output_file_path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flag(s) not set: %s", strings.Join(missing, ", "))
	}

	if _, err := language.LookupSource(flags.Source); err != nil {
		return err
	}
	if _, err := language.LookupPivot(flags.Pivot); err != nil {
		return err
	}

	if !contains(translation.Providers(), flags.Provider) {
		return fmt.Errorf("invalid provider %q (choose from %s)", flags.Provider, strings.Join(translation.Providers(), ", "))
	}
	if !contains(OnErrorPolicies(), flags.OnError) {
		return fmt.Errorf("invalid on-error policy %q (choose from %s)", flags.OnError, strings.Join(OnErrorPolicies(), ", "))
	}
	if flags.MaxConsecutiveFailures < 0 {
		return errors.New("max-consecutive-failures must not be negative")
	}
	if flags.InputColumn == "" || flags.OutputColumn == "" {
		return errors.New("input and output column names must not be empty")
	}

	return nil
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("openai.key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return viper.GetString("gemini.key")
}

// TranslationConfig builds the provider configuration from the flags
func TranslationConfig(flags *Flags) *translation.Config {
	config := translation.DefaultConfig()

	config.Provider = flags.Provider
	config.OpenAIKey = GetOpenAIKey()
	config.OpenAIModel = flags.OpenAIModel
	config.GeminiKey = GetGeminiKey()
	config.GeminiModel = flags.GeminiModel

	if baseURL := viper.GetString("gemini.base_url"); baseURL != "" {
		config.GeminiBaseURL = baseURL
	}
	if baseURL := viper.GetString("openai.base_url"); baseURL != "" {
		config.OpenAIBaseURL = baseURL
	}

	return config
}
