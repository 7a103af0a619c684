package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/davidbz/sgrep/internal/config"
	"github.com/davidbz/sgrep/internal/domain"
	"github.com/davidbz/sgrep/internal/filter"
	"github.com/davidbz/sgrep/internal/observability"
	"github.com/davidbz/sgrep/internal/pattern"
)

const defaultAuthProvider = "openai"

// usageError marks command-line mistakes, which exit with status 2.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

type rootOptions struct {
	auth        string
	provider    string
	model       string
	dialect     string
	ignoreCase  bool
	lineNumbers bool
	color       string
	explain     bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   `sgrep [flags] "<description>"`,
		Short: "Search lines with a pattern described in plain language",
		Long: `sgrep turns a natural-language description into a regular expression using a
language model, then prints every line of standard input that matches it.

Set a token once with --auth, or export OPENAI_API_KEY / ANTHROPIC_API_KEY.`,
		Example: `  tail -f app.log | sgrep "lines with an HTTP 5xx status code"
  sgrep --auth sk-...
  sgrep --explain "IPv4 addresses"`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts, args)
		},
	}

	cmd.SetVersionTemplate(versionText())
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.Flags()
	flags.StringVarP(&opts.auth, "auth", "a", "", "Save an API token for the provider and exit")
	flags.StringVarP(&opts.provider, "provider", "p", "", "Translation provider (openai, anthropic, ollama, static)")
	flags.StringVarP(&opts.model, "model", "m", "", "Model used for translation (default from SGREP_MODEL)")
	flags.StringVar(&opts.dialect, "dialect", "", "Pattern dialect: re2, perl or ecmascript")
	flags.BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "Match case-insensitively")
	flags.BoolVarP(&opts.lineNumbers, "line-number", "n", false, "Prefix each match with its line number")
	flags.StringVar(&opts.color, "color", "", "Highlight matches: never, auto or always")
	flags.BoolVar(&opts.explain, "explain", false, "Print the translated pattern and exit")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline details to standard error")

	return cmd
}

func runRoot(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := applyFlags(cmd, opts, cfg); err != nil {
		return err
	}

	if cmd.Flags().Changed("auth") {
		if strings.TrimSpace(opts.auth) == "" {
			return &usageError{err: errors.New("--auth flag requires an argument")}
		}
		return saveToken(cmd, cfg, opts.auth)
	}

	description := strings.Join(args, " ")
	if strings.TrimSpace(description) == "" {
		return &usageError{err: errors.New("a description of the lines to find is required")}
	}

	container, err := buildContainer(cfg)
	if err != nil {
		return err
	}

	return container.Invoke(func(service *domain.TranslationService, logger *zap.Logger) error {
		defer func() { _ = logger.Sync() }()
		return search(cmd, cfg, opts, service, description)
	})
}

func search(
	cmd *cobra.Command,
	cfg *config.Config,
	opts *rootOptions,
	service *domain.TranslationService,
	description string,
) error {
	ctx := observability.WithRunID(cmd.Context(), observability.GenerateRunID())
	logger := observability.FromContext(ctx)

	translation, err := service.Translate(ctx, description)
	if err != nil {
		return err
	}

	logger.Debug("pattern ready",
		observability.String("provider", translation.Provider),
		observability.String("pattern", translation.Pattern.String()),
		observability.Int("total_tokens", translation.Usage.TotalTokens),
		observability.Float64("cost_usd", translation.Usage.Cost),
	)

	out := cmd.OutOrStdout()
	if opts.explain {
		_, err := fmt.Fprintln(out, translation.Pattern.String())
		return err
	}

	lines := filter.New(translation.Pattern, filter.Options{
		LineNumbers: cfg.Output.LineNumbers,
		Highlight:   colorEnabled(cfg.Output.Color, out),
	})

	err = lines.Run(ctx, cmd.InOrStdin(), out)
	stats := lines.Stats()
	logger.Debug("filter finished",
		observability.String("state", lines.State().String()),
		observability.Int("lines_read", stats.LinesRead),
		observability.Int("lines_matched", stats.LinesMatched),
	)

	return err
}

// applyFlags overrides environment configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("provider") {
		cfg.Translator.Provider = opts.provider
	}
	if flags.Changed("model") {
		cfg.Translator.Model = opts.model
	}
	if flags.Changed("dialect") {
		cfg.Pattern.Dialect = pattern.Dialect(opts.dialect)
	}
	if flags.Changed("ignore-case") {
		cfg.Pattern.IgnoreCase = opts.ignoreCase
	}
	if flags.Changed("line-number") {
		cfg.Output.LineNumbers = opts.lineNumbers
	}
	if flags.Changed("color") {
		cfg.Output.Color = opts.color
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}

	return nil
}

func saveToken(cmd *cobra.Command, cfg *config.Config, token string) error {
	store := newCredentialStore(&cfg.Credentials)

	provider := cfg.Translator.Provider
	if provider == "" {
		provider = defaultAuthProvider
	}

	if err := store.Save(cmd.Context(), provider, domain.Token(token)); err != nil {
		return fmt.Errorf("saving %s token: %w", provider, err)
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved %s token to %s\n", provider, store.Path())
	return err
}

// colorEnabled resolves the color mode. auto means w is a terminal and
// NO_COLOR is unset.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorAuto:
		f, ok := w.(*os.File)
		if !ok || os.Getenv("NO_COLOR") != "" {
			return false
		}
		return term.IsTerminal(int(f.Fd()))
	default:
		return false
	}
}
