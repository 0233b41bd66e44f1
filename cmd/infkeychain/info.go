package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/infkeychain/internal/app"
	"github.com/zx06/infkeychain/internal/output"
)

// newInfoCommand creates a command that prints static data in the selected format
func newInfoCommand(use, short string, data func() any, w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			return w.WriteOK(format, data())
		},
	}
}

// NewSpecCommand creates the spec command
func NewSpecCommand(a *app.App, w *output.Writer) *cobra.Command {
	return newInfoCommand("spec", "Export tool spec for AI/agents", func() any { return a.BuildSpec() }, w)
}

// NewVersionCommand creates the version command
func NewVersionCommand(a *app.App, w *output.Writer) *cobra.Command {
	return newInfoCommand("version", "Print version information", func() any { return a.VersionInfo() }, w)
}
