package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/transquery/internal/cli"
	"codeberg.org/snonux/transquery/internal/journal"
	"codeberg.org/snonux/transquery/internal/language"
	"codeberg.org/snonux/transquery/internal/models"
	"codeberg.org/snonux/transquery/internal/processor"
	"codeberg.org/snonux/transquery/internal/translation"
)

// breakerCoolDown is how long an open breaker rejects calls before probing again
const breakerCoolDown = time.Minute

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	// Handle --list-languages flag
	if flags.ListLanguages {
		return language.PrintTable(cmd.OutOrStdout())
	}

	cli.ResolveFlags(flags)

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.TranslationConfig(flags))
		return lister.PrintChatModels(cmd.Context(), cmd.OutOrStdout(), flags.OpenAIModel)
	}

	if err := cli.Validate(flags); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	translator, err := newTranslator(flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	// Create processor
	proc := processor.NewProcessor(flags, translator)
	proc.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	if flags.Journal != "" {
		j, err := journal.Open(flags.Journal)
		if err != nil {
			return err
		}
		defer j.Close()
		proc.SetJournal(j)
	}

	if _, err := proc.Run(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nDone! Translations saved to: %s\n", flags.OutputFile)
	return nil
}

func newTranslator(flags *cli.Flags, errOut io.Writer) (translation.Translator, error) {
	config := cli.TranslationConfig(flags)

	provider, err := translation.NewTranslator(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s translator: %w", config.Provider, err)
	}

	return withBreaker(provider, flags.MaxConsecutiveFailures, errOut), nil
}

// withBreaker wraps provider in a circuit breaker that reports its
// transitions to errOut
func withBreaker(provider translation.Translator, threshold int, errOut io.Writer) translation.Translator {
	translator := translation.NewBreaker(provider, threshold, breakerCoolDown)
	if breaker, ok := translator.(*translation.Breaker); ok {
		breaker.OnStateChange = func(from, to string) {
			fmt.Fprintf(errOut, "Provider %s: circuit %s -> %s\n", provider.Name(), from, to)
		}
	}
	return translator
}
