package app

import (
	"github.com/zx06/infkeychain/internal/config"
	"github.com/zx06/infkeychain/internal/errors"
	"github.com/zx06/infkeychain/internal/keychain"
	"github.com/zx06/infkeychain/internal/output"
	"github.com/zx06/infkeychain/internal/spec"
)

type App struct {
	Version string
	Commit  string
	Date    string
}

func New(version, commit, date string) App {
	return App{Version: version, Commit: commit, Date: date}
}

func (a App) BuildSpec() spec.Spec {
	globalFlags := []spec.FlagSpec{
		{Name: "config", Default: "", Description: "Config file path (YAML); default: ./infkeychain.yaml or $HOME/.config/infkeychain/infkeychain.yaml"},
		{Name: "profile", Shorthand: "p", Env: "INFKC_PROFILE", Default: "", Description: "Profile name (config: profiles.<name>)"},
		{Name: "format", Shorthand: "f", Env: "INFKC_FORMAT", Default: "auto", Description: "Output format: json|yaml|table|csv|auto"},
		{Name: "backend", Shorthand: "b", Env: "INFKC_BACKEND", Default: config.DefaultBackend, Description: "Secure storage backend: os|keyring|memory"},
		{Name: "log-level", Env: "INFKC_LOG_LEVEL", Default: "info", Description: "Log level: debug|info|warn|error"},
	}
	serviceFlag := spec.FlagSpec{Name: "service", Shorthand: "s", Env: "INFKC_SERVICE", Description: "Service name (default: profile service)"}
	return spec.Spec{
		SchemaVersion: output.SchemaVersion,
		Commands: []spec.CommandSpec{
			{
				Name:        "spec",
				Description: "Export tool spec for AI/agents",
				Flags:       globalFlags,
			},
			{
				Name:        "version",
				Description: "Print version information",
				Flags:       globalFlags,
			},
			{
				Name:        "get",
				Args:        []string{"username"},
				Description: "Print the password stored for username",
				Flags:       append(append([]spec.FlagSpec{}, globalFlags...), serviceFlag),
			},
			{
				Name:        "set",
				Args:        []string{"username"},
				Description: "Store a password for username",
				Flags: append(append([]spec.FlagSpec{}, globalFlags...), serviceFlag,
					spec.FlagSpec{Name: "password", Description: "Password value (prefer --password-stdin)"},
					spec.FlagSpec{Name: "password-stdin", Default: "false", Description: "Read the password from stdin"},
					spec.FlagSpec{Name: "update", Shorthand: "u", Default: "false", Description: "Overwrite an existing entry"},
				),
			},
			{
				Name:        "delete",
				Args:        []string{"username"},
				Description: "Delete the entry for username",
				Flags:       append(append([]spec.FlagSpec{}, globalFlags...), serviceFlag),
			},
			{
				Name:        "backend list",
				Description: "List registered secure storage backends",
				Flags:       globalFlags,
			},
			{
				Name:        "profile list",
				Description: "List all configured profiles",
				Flags:       globalFlags,
			},
			{
				Name:        "profile show",
				Args:        []string{"name"},
				Description: "Show profile details",
				Flags:       globalFlags,
			},
			{
				Name:        "mcp server",
				Description: "Start MCP server for AI assistant integration",
				Flags: append(append([]spec.FlagSpec{}, globalFlags...),
					spec.FlagSpec{Name: "transport", Env: "INFKC_MCP_TRANSPORT", Default: "stdio", Description: "MCP transport: stdio|streamable_http"},
					spec.FlagSpec{Name: "http-addr", Env: "INFKC_MCP_HTTP_ADDR", Default: "127.0.0.1:8787", Description: "Streamable HTTP listen address"},
					spec.FlagSpec{Name: "http-auth-token", Env: "INFKC_MCP_HTTP_AUTH_TOKEN", Description: "Streamable HTTP auth token"},
				),
			},
		},
		Backends:    keychain.RegisteredNames(),
		ErrorCodes:  errors.AllCodes(),
		ErrorDomain: spec.DomainSpec{
			Name: keychain.ErrorDomain,
			Codes: map[string]int{
				"nil_parameter":                      keychain.CodeNilParameter,
				"previously_stored_password_missing": keychain.CodePreviouslyStoredPasswordMissing,
				"item_not_found":                     keychain.StatusItemNotFound,
				"duplicate_item":                     keychain.StatusDuplicateItem,
				"auth_failed":                        keychain.StatusAuthFailed,
				"interaction_not_allowed":            keychain.StatusInteractionNotAllowed,
				"not_available":                      keychain.StatusNotAvailable,
				"param":                              keychain.StatusParam,
				"internal":                           keychain.StatusInternal,
			},
		},
	}
}

type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

func (a App) VersionInfo() VersionInfo {
	return VersionInfo{Version: a.Version, Commit: a.Commit, Date: a.Date}
}
