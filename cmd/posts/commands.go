package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-posts/pkg/model"
	"github.com/goliatone/go-posts/pkg/orchestrator"
	"github.com/goliatone/go-posts/pkg/prompt"
	"github.com/goliatone/go-posts/pkg/render"
	"github.com/goliatone/go-posts/pkg/schema"
	"github.com/goliatone/go-posts/pkg/store"
	"github.com/goliatone/go-posts/pkg/watch"
)

const (
	noticeCreated = "Post was successfully created."
	noticeUpdated = "Post was successfully updated."
)

func newIndexCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Render the listing of every fixture post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.app.render(cmd.Context(), orchestrator.Request{View: render.ViewIndex})
		},
	}
}

func newShowCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "show <label|id>",
		Short: "Render the detail page of one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.app.render(cmd.Context(), orchestrator.Request{
				View:    render.ViewShow,
				PostKey: args[0],
			})
		},
	}
}

type attributeFlags struct {
	name    string
	title   string
	content string
}

func (f *attributeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "post name")
	cmd.Flags().StringVar(&f.title, "title", "", "post title")
	cmd.Flags().StringVar(&f.content, "content", "", "post content")
}

// values returns the attributes whose flags were set.
func (f *attributeFlags) values(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	if cmd.Flags().Changed("name") {
		out[model.FieldName] = f.name
	}
	if cmd.Flags().Changed("title") {
		out[model.FieldTitle] = f.title
	}
	if cmd.Flags().Changed("content") {
		out[model.FieldContent] = f.content
	}
	return out
}

func newNewCmd(state *cliState) *cobra.Command {
	attrs := &attributeFlags{}
	var interactive bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a post and render it, or render the form with errors",
		Long: `new creates a post from --name, --title and --content. With --interactive
the attributes are prompted for instead. A valid post renders its detail page
with a notice; an invalid one renders the new form with error messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := state.app

			values := attrs.values(cmd)
			if interactive {
				asked, err := askAttributes(ctx, state, model.Attributes{}.Merge(values))
				if err != nil {
					return err
				}
				values = asked.Map()
			}

			post, err := a.store.Create(ctx, model.Attributes{}.Merge(values))
			if err != nil {
				verr, ok := model.AsValidationErrors(err)
				if !ok {
					return err
				}
				a.logger.Info("post rejected", zap.Int("errors", verr.Count()))
				return a.render(ctx, orchestrator.Request{
					View:     render.ViewNew,
					Renderer: formRenderer(),
					RenderOptions: render.RenderOptions{
						Values: values,
						Errors: verr.Map(),
					},
				})
			}

			return a.render(ctx, orchestrator.Request{
				View:          render.ViewShow,
				Assigns:       render.Assigns{Post: &post},
				RenderOptions: render.RenderOptions{Notice: noticeCreated},
			})
		},
	}
	attrs.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for attributes")
	return cmd
}

func newEditCmd(state *cliState) *cobra.Command {
	attrs := &attributeFlags{}

	cmd := &cobra.Command{
		Use:   "edit <label|id>",
		Short: "Render the edit form, or update a post and render it",
		Long: `Without attribute flags edit renders the edit form of the post. With any of
--name, --title or --content the post is updated; a valid update renders the
detail page with a notice, an invalid one the edit form with errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := state.app

			values := attrs.values(cmd)
			if len(values) == 0 {
				return a.render(ctx, orchestrator.Request{
					View:     render.ViewEdit,
					Renderer: formRenderer(),
					PostKey:  args[0],
				})
			}

			current, err := store.Lookup(ctx, a.store, args[0])
			if err != nil {
				return err
			}
			updated, err := a.store.Update(ctx, current.ID, current.Attributes().Merge(values))
			if err != nil {
				verr, ok := model.AsValidationErrors(err)
				if !ok {
					return err
				}
				return a.render(ctx, orchestrator.Request{
					View:     render.ViewEdit,
					Renderer: formRenderer(),
					Assigns:  render.Assigns{Post: &current},
					RenderOptions: render.RenderOptions{
						Values: values,
						Errors: verr.Map(),
					},
				})
			}

			return a.render(ctx, orchestrator.Request{
				View:          render.ViewShow,
				Assigns:       render.Assigns{Post: &updated},
				RenderOptions: render.RenderOptions{Notice: noticeUpdated},
			})
		},
	}
	attrs.register(cmd)
	return cmd
}

func newRoutesCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the operations of the posts resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := schema.Default()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(state.app.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tOPERATION\tSUMMARY")
			for _, op := range validator.Operations() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", op.Method, op.Path, op.ID, op.Summary)
			}
			return w.Flush()
		},
	}
}

func newWatchCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-render the listing to --output whenever templates or fixtures change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := state.app

			if a.cfg.Output == "" {
				return errors.New("watch: --output is required")
			}
			var paths []string
			if a.cfg.TemplatesDir != "" {
				paths = append(paths, filepath.Join(a.cfg.TemplatesDir, "templates"))
			}
			if a.cfg.FixturesPath != "" {
				paths = append(paths, a.cfg.FixturesPath)
			}
			if len(paths) == 0 {
				return errors.New("watch: set --templates or --fixtures to watch")
			}

			renderIndex := func(ctx context.Context) {
				if err := a.render(ctx, orchestrator.Request{View: render.ViewIndex}); err != nil {
					a.logger.Error("render failed", zap.Error(err))
				}
			}
			renderIndex(ctx)

			w, err := watch.New(paths, func(ctx context.Context, changed []string) {
				if err := a.reload(ctx); err != nil {
					a.logger.Error("reload failed", zap.Error(err))
					return
				}
				renderIndex(ctx)
			},
				watch.WithDebounce(a.cfg.Watch.Debounce),
				watch.WithExtensions(".tmpl", ".yml", ".yaml"),
				watch.WithLogger(a.logger.Named("watch")),
			)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			a.logger.Info("watching for changes", zap.Strings("paths", paths))
			<-ctx.Done()
			return nil
		},
	}
}

func askAttributes(ctx context.Context, state *cliState, defaults model.Attributes) (model.Attributes, error) {
	driver := state.driver
	if driver == nil {
		driver = prompt.NewSurveyDriver(state.app.stdout)
	}
	validator, err := schema.Default()
	if err != nil {
		return model.Attributes{}, err
	}
	return prompt.AskPost(ctx, driver, defaults,
		prompt.WithFieldValidator(validator.ValidateField),
		prompt.WithConfirmation(),
	)
}

// formRenderer picks the HTML renderer for form views since text output has
// no forms.
func formRenderer() string {
	return "vanilla"
}
