package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-posts/internal/config"
	"github.com/goliatone/go-posts/internal/logging"
	"github.com/goliatone/go-posts/pkg/prompt"
)

type rootFlags struct {
	configPath string
	renderer   string
	templates  string
	fixtures   string
	output     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	return newRootCommand(&cliState{})
}

func newRootCommand(state *cliState) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Render the posts resource pages from fixture records",
		Long: `posts loads fixture records into memory and renders the listing,
detail and form pages of the posts resource as HTML or plain text.

Fixtures are YAML documents of labelled posts:

  one:
    name: Name
    title: Title
    content: MyText`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := cfg.LogLevel
			if flags.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, cfg.Development)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			a, err := newApp(cmd.Context(), cfg, logger, cmd.OutOrStdout())
			if err != nil {
				_ = logger.Sync()
				return err
			}
			state.app = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if state.app != nil {
				_ = state.app.logger.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default posts.yml, or $POSTS_CONFIG)")
	pf.StringVar(&flags.renderer, "renderer", "", "output format: html or text")
	pf.StringVar(&flags.templates, "templates", "", "directory holding templates/*.tmpl overrides for HTML output")
	pf.StringVar(&flags.fixtures, "fixtures", "", "fixture YAML file (default: built-in fixtures)")
	pf.StringVarP(&flags.output, "output", "o", "", "write output to file instead of stdout")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newIndexCmd(state),
		newShowCmd(state),
		newNewCmd(state),
		newEditCmd(state),
		newRoutesCmd(state),
		newWatchCmd(state),
	)
	return cmd
}

// apply lets flags that were set explicitly override loaded settings.
func (f *rootFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("renderer") {
		cfg.Renderer = f.renderer
	}
	if changed("templates") {
		cfg.TemplatesDir = f.templates
	}
	if changed("fixtures") {
		cfg.FixturesPath = f.fixtures
	}
	if changed("output") {
		cfg.Output = f.output
	}
}

type cliState struct {
	app    *app
	driver prompt.PromptDriver
}
