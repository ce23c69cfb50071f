package main

import (
	"github.com/spf13/cobra"

	verrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
)

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compile a template and report problems",
		Long: `Compile the template against the data model and report the
bindings it creates. Failing directives are reported with an error code;
unknown directives are listed as warnings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProject(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			vm, err := p.instance(&dom.Updater{}, nil)
			if err != nil {
				verrors.Fprint(cmd.ErrOrStderr(), verrors.Classify(err).WithSource(a.cfg.Template))
				return errReported
			}

			report := vm.Report()
			success(out, "%s compiled", a.cfg.Template)
			info(out, "watchers:       %d", report.Watchers)
			info(out, "listeners:      %d", report.Listeners)
			info(out, "interpolations: %d", report.Interpolations)
			for _, name := range report.Unknown {
				warn(out, "unknown directive %s was removed", name)
			}
			return nil
		},
	}
}
