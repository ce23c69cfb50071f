package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	verrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
)

func renderCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Compile a template against its data and print the HTML",
		Long: `Compile the template against the data model and print the
resulting HTML. Directive attributes are removed from the output.

Examples:
  vbind render -t page.html -d data.yaml
  vbind render --out s3://site/index.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProject(cmd.Context())
			if err != nil {
				return err
			}
			vm, err := p.instance(&dom.Updater{}, nil)
			if err != nil {
				return verrors.Classify(err).WithSource(a.cfg.Template)
			}

			var b strings.Builder
			for _, c := range vm.El().Children {
				if err := dom.Render(&b, c, dom.RenderOptions{}); err != nil {
					return verrors.New("E041").Wrap(err)
				}
			}
			html := b.String()

			if out == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), html)
				return err
			}
			if err := a.loader.Write(cmd.Context(), out, []byte(html), "text/html; charset=utf-8"); err != nil {
				return err
			}
			success(cmd.ErrOrStderr(), "Wrote %s", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file or s3:// URL instead of stdout")

	return cmd
}
