package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/zx06/infkeychain/internal/config"
	"github.com/zx06/infkeychain/internal/errors"
	"github.com/zx06/infkeychain/internal/output"
)

// NewProfileCommand creates the profile command group
func NewProfileCommand(w *output.Writer) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}

	profileCmd.AddCommand(newProfileListCommand(w))
	profileCmd.AddCommand(newProfileShowCommand(w))

	return profileCmd
}

// newProfileListCommand creates the profile list command
func newProfileListCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			cfg, cfgPath, xe := config.LoadConfig(config.Options{
				ConfigPath: GlobalConfig.ConfigStr,
			})
			if xe != nil {
				return xe
			}

			type profileInfo struct {
				Name        string `json:"name" yaml:"name"`
				Description string `json:"description,omitempty" yaml:"description,omitempty"`
				Service     string `json:"service" yaml:"service"`
				Backend     string `json:"backend" yaml:"backend"`
			}

			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)

			profiles := make([]profileInfo, 0, len(names))
			for _, name := range names {
				p := cfg.Profiles[name]
				profiles = append(profiles, profileInfo{
					Name:        name,
					Description: p.Description,
					Service:     p.Service,
					Backend:     profileBackend(p, cfg),
				})
			}

			result := map[string]any{
				"config_path": cfgPath,
				"profiles":    profiles,
			}

			return w.WriteOK(format, result)
		},
	}
}

// newProfileShowCommand creates the profile show command
func newProfileShowCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show profile details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			cfg, cfgPath, xe := config.LoadConfig(config.Options{
				ConfigPath: GlobalConfig.ConfigStr,
			})
			if xe != nil {
				return xe
			}

			profile, ok := cfg.Profiles[name]
			if !ok {
				return errors.New(errors.CodeCfgInvalid, "profile not found", map[string]any{"name": name})
			}

			result := map[string]any{
				"config_path": cfgPath,
				"name":        name,
				"description": profile.Description,
				"service":     profile.Service,
				"backend":     profileBackend(profile, cfg),
				"format":      profile.Format,
			}

			return w.WriteOK(format, result)
		},
	}
}

// profileBackend returns the backend a profile uses when no CLI/ENV override is given
func profileBackend(p config.Profile, cfg config.File) string {
	if p.Backend != "" {
		return p.Backend
	}
	if cfg.Backend != "" {
		return cfg.Backend
	}
	return config.DefaultBackend
}
