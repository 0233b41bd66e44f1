package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"github.com/zx06/infkeychain/internal/app"
	"github.com/zx06/infkeychain/internal/config"
	"github.com/zx06/infkeychain/internal/errors"
	"github.com/zx06/infkeychain/internal/keychain"
	"github.com/zx06/infkeychain/internal/output"
)

func TestParseOutputFormat(t *testing.T) {
	format, err := parseOutputFormat("auto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != output.FormatJSON && format != output.FormatTable {
		t.Fatalf("unexpected format: %s", format)
	}

	if _, err := parseOutputFormat("invalid"); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestResolveFormatForError(t *testing.T) {
	format := resolveFormatForError("invalid")
	if format != output.FormatJSON && format != output.FormatTable {
		t.Fatalf("unexpected format: %s", format)
	}
}

func TestNormalizeErr(t *testing.T) {
	xe := errors.New(errors.CodeCfgInvalid, "bad config", nil)
	if got := normalizeErr(xe); got != xe {
		t.Fatalf("expected same error, got %v", got)
	}

	err := normalizeErr(os.ErrInvalid)
	if err.Code != errors.CodeInternal {
		t.Fatalf("expected CodeInternal, got %s", err.Code)
	}

	_, kerr := keychain.New(keychain.NewMemoryFacility()).Password(t.Context(), "nobody", "svc")
	if got := normalizeErr(fmt.Errorf("get: %w", kerr)); got.Code != errors.CodeItemNotFound {
		t.Fatalf("expected CodeItemNotFound, got %s", got.Code)
	}
}

func TestRun_SpecCommandSuccess(t *testing.T) {
	prev := GlobalConfig
	GlobalConfig = &Config{}
	t.Cleanup(func() { GlobalConfig = prev })

	prevArgs := os.Args
	os.Args = []string{"infkeychain", "spec", "--format", "json"}
	t.Cleanup(func() { os.Args = prevArgs })

	exitCode := run()
	if exitCode != int(errors.ExitOK) {
		t.Fatalf("expected exit 0, got %d", exitCode)
	}
}

func TestRun_InvalidFormatExitCode(t *testing.T) {
	prev := GlobalConfig
	GlobalConfig = &Config{}
	t.Cleanup(func() { GlobalConfig = prev })

	prevArgs := os.Args
	os.Args = []string{"infkeychain", "spec", "--format", "invalid"}
	t.Cleanup(func() { os.Args = prevArgs })

	exitCode := run()
	if exitCode != int(errors.ExitConfig) {
		t.Fatalf("expected exit 2, got %d", exitCode)
	}
}

func TestReadPassword(t *testing.T) {
	newCmd := func(stdin string) *cobra.Command {
		c := &cobra.Command{}
		c.SetIn(strings.NewReader(stdin))
		c.SetErr(&bytes.Buffer{})
		return c
	}

	got, err := readPassword(newCmd(""), &CredentialFlags{Password: "flag-pw", PasswordSet: true})
	if err != nil || got != "flag-pw" {
		t.Fatalf("flag password: got %q, %v", got, err)
	}

	got, err = readPassword(newCmd("line-pw\r\nignored\n"), &CredentialFlags{PasswordStdin: true})
	if err != nil || got != "line-pw" {
		t.Fatalf("stdin password: got %q, %v", got, err)
	}

	got, err = readPassword(newCmd("no-newline"), &CredentialFlags{PasswordStdin: true})
	if err != nil || got != "no-newline" {
		t.Fatalf("stdin password without newline: got %q, %v", got, err)
	}

	_, err = readPassword(newCmd(""), &CredentialFlags{PasswordSet: true, PasswordStdin: true})
	if xe, ok := errors.As(err); !ok || xe.Code != errors.CodeCfgInvalid {
		t.Fatalf("expected CodeCfgInvalid for conflicting flags, got %v", err)
	}
}

func TestResolveService(t *testing.T) {
	prev := GlobalConfig
	GlobalConfig = &Config{Resolved: config.Resolved{Service: "from-config"}}
	t.Cleanup(func() { GlobalConfig = prev })

	if got := resolveService("from-flag"); got != "from-flag" {
		t.Fatalf("expected flag service, got %q", got)
	}
	if got := resolveService(""); got != "from-config" {
		t.Fatalf("expected resolved service, got %q", got)
	}
}

func TestFacilityOptions(t *testing.T) {
	kc := config.KeyringConfig{
		Backends:       []string{"file"},
		FileDir:        "/tmp/rings",
		FilePassphrase: "plain",
		KeychainName:   "login",
	}

	t.Run("os backend ignores passphrase", func(t *testing.T) {
		opts, xe := facilityOptions(keychain.BackendOS, kc)
		if xe != nil {
			t.Fatalf("unexpected error: %v", xe)
		}
		if opts.FilePassphrase != "" || opts.FileDir != "/tmp/rings" {
			t.Fatalf("unexpected options: %+v", opts)
		}
	})

	t.Run("env passphrase wins", func(t *testing.T) {
		t.Setenv("INFKC_FILE_PASSPHRASE", "from-env")
		opts, xe := facilityOptions(keychain.BackendRing, kc)
		if xe != nil {
			t.Fatalf("unexpected error: %v", xe)
		}
		if opts.FilePassphrase != "from-env" {
			t.Fatalf("expected env passphrase, got %q", opts.FilePassphrase)
		}
	})

	t.Run("plaintext config passphrase rejected", func(t *testing.T) {
		t.Setenv("INFKC_FILE_PASSPHRASE", "")
		_, xe := facilityOptions(keychain.BackendRing, kc)
		if xe == nil || xe.Code != errors.CodeCfgInvalid {
			t.Fatalf("expected CodeCfgInvalid, got %v", xe)
		}
	})

	t.Run("keyring reference", func(t *testing.T) {
		t.Setenv("INFKC_FILE_PASSPHRASE", "")
		keyring.MockInit()
		if err := keyring.Set("infkeychain", "file-passphrase", "from-os"); err != nil {
			t.Fatal(err)
		}
		ref := kc
		ref.FilePassphrase = "keyring:infkeychain/file-passphrase"
		opts, xe := facilityOptions(keychain.BackendRing, ref)
		if xe != nil {
			t.Fatalf("unexpected error: %v", xe)
		}
		if opts.FilePassphrase != "from-os" {
			t.Fatalf("expected passphrase from os keychain, got %q", opts.FilePassphrase)
		}
	})
}

func TestNewAccessor_UnknownBackend(t *testing.T) {
	prev := GlobalConfig
	GlobalConfig = &Config{Resolved: config.Resolved{Backend: "floppy"}}
	t.Cleanup(func() { GlobalConfig = prev })

	_, err := newAccessor()
	xe := normalizeErr(err)
	if xe.Code != errors.CodeBackendUnavailable {
		t.Fatalf("expected CodeBackendUnavailable, got %v", err)
	}
	if errors.ExitCodeFor(xe.Code) != errors.ExitUnavailable {
		t.Fatal("expected unavailable exit code")
	}
}

func TestProfileCommands_ListAndShow(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "infkeychain.yaml")
	configContent := `
profiles:
  dev:
    description: "Dev credentials"
    service: com.example.dev
  prod:
    description: "Prod credentials"
    service: com.example.prod
    backend: keyring
    format: yaml
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	GlobalConfig.ConfigStr = configPath
	GlobalConfig.FormatStr = "json"

	var out bytes.Buffer
	w := output.New(&out, &bytes.Buffer{})
	listCmd := newProfileListCommand(&w)
	listCmd.SetArgs([]string{})
	if err := listCmd.Execute(); err != nil {
		t.Fatalf("list command failed: %v", err)
	}
	if !json.Valid(out.Bytes()) {
		t.Fatalf("expected json output, got: %s", out.String())
	}

	out.Reset()
	showCmd := newProfileShowCommand(&w)
	showCmd.SetArgs([]string{"prod"})
	if err := showCmd.Execute(); err != nil {
		t.Fatalf("show command failed: %v", err)
	}
	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("expected json output, got: %s", out.String())
	}
	if resp.Data["service"] != "com.example.prod" || resp.Data["backend"] != "keyring" {
		t.Fatalf("unexpected profile: %v", resp.Data)
	}
}

func TestProfileBackend(t *testing.T) {
	if got := profileBackend(config.Profile{}, config.File{}); got != config.DefaultBackend {
		t.Fatalf("expected default backend, got %q", got)
	}
	if got := profileBackend(config.Profile{}, config.File{Backend: "keyring"}); got != "keyring" {
		t.Fatalf("expected file backend, got %q", got)
	}
	if got := profileBackend(config.Profile{Backend: "memory"}, config.File{Backend: "keyring"}); got != "memory" {
		t.Fatalf("expected profile backend, got %q", got)
	}
}

func TestRunMCPServer_ConfigMissing(t *testing.T) {
	GlobalConfig.ConfigStr = filepath.Join(t.TempDir(), "missing.yaml")
	err := runMCPServer(&mcpServerOptions{})
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestResolveMCPServerOptions_Defaults(t *testing.T) {
	t.Setenv("INFKC_MCP_TRANSPORT", "")
	t.Setenv("INFKC_MCP_HTTP_ADDR", "")
	t.Setenv("INFKC_MCP_HTTP_AUTH_TOKEN", "")
	cfg := config.File{
		Profiles: map[string]config.Profile{},
	}
	resolved, xe := resolveMCPServerOptions(nil, cfg)
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if resolved.transport != "stdio" {
		t.Fatalf("expected stdio transport, got %s", resolved.transport)
	}
	if resolved.httpAddr != "127.0.0.1:8787" {
		t.Fatalf("expected default http addr, got %s", resolved.httpAddr)
	}
}

func TestResolveMCPServerOptions_StreamableHTTPEnv(t *testing.T) {
	t.Setenv("INFKC_MCP_TRANSPORT", "streamable_http")
	t.Setenv("INFKC_MCP_HTTP_AUTH_TOKEN", "env-token")
	cfg := config.File{
		Profiles: map[string]config.Profile{},
	}
	resolved, xe := resolveMCPServerOptions(&mcpServerOptions{}, cfg)
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if resolved.transport != "streamable_http" {
		t.Fatalf("expected streamable_http transport, got %s", resolved.transport)
	}
	if resolved.httpAuthToken != "env-token" {
		t.Fatalf("expected env token, got %s", resolved.httpAuthToken)
	}
}

func TestResolveMCPServerOptions_StreamableHTTPConfigToken(t *testing.T) {
	t.Setenv("INFKC_MCP_HTTP_AUTH_TOKEN", "")
	cfg := config.File{
		Profiles: map[string]config.Profile{},
		MCP: config.MCPConfig{
			Transport: "streamable_http",
			HTTP: config.MCPHTTPConfig{
				Addr:                "127.0.0.1:9999",
				AuthToken:           "config-token",
				AllowPlaintextToken: true,
			},
		},
	}
	resolved, xe := resolveMCPServerOptions(&mcpServerOptions{}, cfg)
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if resolved.httpAddr != "127.0.0.1:9999" {
		t.Fatalf("expected configured addr, got %s", resolved.httpAddr)
	}
	if resolved.httpAuthToken != "config-token" {
		t.Fatalf("expected config token, got %s", resolved.httpAuthToken)
	}
}

func TestResolveMCPServerOptions_KeyringToken(t *testing.T) {
	t.Setenv("INFKC_MCP_HTTP_AUTH_TOKEN", "")
	keyring.MockInit()
	if err := keyring.Set("infkeychain", "mcp-token", "ring-token"); err != nil {
		t.Fatal(err)
	}
	cfg := config.File{
		MCP: config.MCPConfig{
			Transport: "streamable_http",
			HTTP:      config.MCPHTTPConfig{AuthToken: "keyring:infkeychain/mcp-token"},
		},
	}
	resolved, xe := resolveMCPServerOptions(&mcpServerOptions{}, cfg)
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if resolved.httpAuthToken != "ring-token" {
		t.Fatalf("expected keyring token, got %s", resolved.httpAuthToken)
	}
}

func TestResolveMCPServerOptions_InvalidTransport(t *testing.T) {
	t.Setenv("INFKC_MCP_TRANSPORT", "")
	cfg := config.File{
		Profiles: map[string]config.Profile{},
		MCP: config.MCPConfig{
			Transport: "bad",
		},
	}
	_, xe := resolveMCPServerOptions(&mcpServerOptions{}, cfg)
	if xe == nil {
		t.Fatal("expected error for invalid transport")
	}
	if xe.Code != errors.CodeCfgInvalid {
		t.Fatalf("expected CodeCfgInvalid, got %s", xe.Code)
	}
}

func TestResolveMCPServerOptions_StreamableHTTPMissingToken(t *testing.T) {
	t.Setenv("INFKC_MCP_TRANSPORT", "")
	t.Setenv("INFKC_MCP_HTTP_AUTH_TOKEN", "")
	cfg := config.File{
		Profiles: map[string]config.Profile{},
		MCP: config.MCPConfig{
			Transport: "streamable_http",
		},
	}
	_, xe := resolveMCPServerOptions(&mcpServerOptions{}, cfg)
	if xe == nil {
		t.Fatal("expected error for missing auth token")
	}
}

func TestResolveMCPServerOptions_CLIOverridesEnvConfig(t *testing.T) {
	t.Setenv("INFKC_MCP_TRANSPORT", "streamable_http")
	t.Setenv("INFKC_MCP_HTTP_AUTH_TOKEN", "env-token")
	cfg := config.File{
		Profiles: map[string]config.Profile{},
		MCP: config.MCPConfig{
			Transport: "streamable_http",
			HTTP: config.MCPHTTPConfig{
				Addr:                "127.0.0.1:7000",
				AuthToken:           "config-token",
				AllowPlaintextToken: true,
			},
		},
	}
	opts := &mcpServerOptions{
		transport:        "stdio",
		transportSet:     true,
		httpAddr:         "127.0.0.1:6000",
		httpAddrSet:      true,
		httpAuthToken:    "cli-token",
		httpAuthTokenSet: true,
	}
	resolved, xe := resolveMCPServerOptions(opts, cfg)
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if resolved.transport != "stdio" {
		t.Fatalf("expected stdio transport, got %s", resolved.transport)
	}
	if resolved.httpAddr != "127.0.0.1:6000" {
		t.Fatalf("expected CLI addr, got %s", resolved.httpAddr)
	}
	if resolved.httpAuthToken != "cli-token" {
		t.Fatalf("expected CLI token, got %s", resolved.httpAuthToken)
	}
}

func TestResolveMCPServerOptions_ConfigTokenPlaintextNotAllowed(t *testing.T) {
	t.Setenv("INFKC_MCP_HTTP_AUTH_TOKEN", "")
	cfg := config.File{
		Profiles: map[string]config.Profile{},
		MCP: config.MCPConfig{
			Transport: "streamable_http",
			HTTP: config.MCPHTTPConfig{
				AuthToken:           "config-token",
				AllowPlaintextToken: false,
			},
		},
	}
	_, xe := resolveMCPServerOptions(&mcpServerOptions{}, cfg)
	if xe == nil {
		t.Fatal("expected error for plaintext token without allow")
	}
	if xe.Code != errors.CodeCfgInvalid {
		t.Fatalf("expected CodeCfgInvalid, got %s", xe.Code)
	}
}

func TestMCPServerCommand_ConfigMissing(t *testing.T) {
	GlobalConfig.ConfigStr = filepath.Join(t.TempDir(), "missing.yaml")

	cmd := newMCPServerCommand()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestVersionCommand_Output(t *testing.T) {
	a := app.New("1.0.0", "abc", "2024-01-01")
	var out bytes.Buffer
	w := output.New(&out, &bytes.Buffer{})
	GlobalConfig.FormatStr = "json"

	cmd := NewVersionCommand(&a, &w)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !json.Valid(out.Bytes()) {
		t.Fatalf("expected json output, got %s", out.String())
	}
}

func TestProfileShowCommand_ProfileNotFound(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "infkeychain.yaml")
	configContent := `
profiles:
  dev:
    service: com.example.dev
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	GlobalConfig.ConfigStr = configPath
	GlobalConfig.FormatStr = "json"

	var out bytes.Buffer
	w := output.New(&out, &bytes.Buffer{})
	cmd := newProfileShowCommand(&w)
	cmd.SetArgs([]string{"missing"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing profile")
	}
}
