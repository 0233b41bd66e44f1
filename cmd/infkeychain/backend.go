package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/infkeychain/internal/config"
	"github.com/zx06/infkeychain/internal/keychain"
	"github.com/zx06/infkeychain/internal/output"
)

// NewBackendCommand creates the backend command group
func NewBackendCommand(w *output.Writer) *cobra.Command {
	backendCmd := &cobra.Command{
		Use:   "backend",
		Short: "Inspect secure storage backends",
	}

	backendCmd.AddCommand(newBackendListCommand(w))

	return backendCmd
}

// newBackendListCommand creates the backend list command
func newBackendListCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered secure storage backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			selected := GlobalConfig.Resolved.Backend
			if selected == "" {
				selected = config.DefaultBackend
			}
			result := map[string]any{
				"backends":                   keychain.RegisteredNames(),
				"selected":                   selected,
				"available_keyring_backends": keychain.AvailableRingBackends(),
			}

			return w.WriteOK(format, result)
		},
	}
}
