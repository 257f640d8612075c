package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pthm/hxwidget"
	"github.com/pthm/hxwidget/internal/demo"
)

var (
	scriptWidget string
	scriptHTML   bool
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the client code generated for the demo widgets",
	Long: `Build the demo widgets with the configured key and callback path and
print the initialisation script of each one. With --html the full head
contribution, resources included, is printed instead.`,
	RunE: runScript,
}

func init() {
	scriptCmd.Flags().StringVarP(&scriptWidget, "widget", "w", "", "Only print widgets with this name (calendar, droppable, draggable)")
	scriptCmd.Flags().BoolVar(&scriptHTML, "html", false, "Print the rendered head markup")
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	app := demo.New(demo.Options{
		Key:          cfg.KeyBytes(),
		CallbackPath: cfg.CallbackPath,
		Location:     loc,
	})

	out := cmd.OutOrStdout()
	for _, w := range app.Widgets() {
		b := w.HXBehavior()
		if scriptWidget != "" && b.Name() != scriptWidget {
			continue
		}
		fmt.Fprintf(out, "// %s %s (%s)\n", b.Name(), b.Selector(), b.Prefix())
		if err := printWidget(cmd.Context(), out, b); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}

func printWidget(ctx context.Context, out io.Writer, b *hxwidget.Behavior) error {
	if scriptHTML {
		return b.Render().Render(ctx, out)
	}
	script, err := b.Script()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, script)
	return err
}
