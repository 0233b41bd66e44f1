package main

import (
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/zx06/infkeychain/internal/config"
	"github.com/zx06/infkeychain/internal/errors"
	"github.com/zx06/infkeychain/internal/keychain"
	"github.com/zx06/infkeychain/internal/output"
	"github.com/zx06/infkeychain/internal/secret"
)

// openFacility opens the configured backend; replaced in tests
var openFacility = keychain.Open

// parseOutputFormat parses and validates the output format string
func parseOutputFormat(s string) (output.Format, error) {
	f := output.Format(s)
	if !output.IsValid(f) {
		return "", errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": s, "allowed": output.Formats()})
	}
	return resolveAuto(f), nil
}

// resolveFormatForError resolves the format for error output
func resolveFormatForError(s string) output.Format {
	f := output.Format(s)
	if !output.IsValid(f) {
		f = output.FormatAuto
	}
	return resolveAuto(f)
}

// resolveAuto resolves "auto" format to appropriate format based on TTY
func resolveAuto(f output.Format) output.Format {
	if f != output.FormatAuto {
		return f
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return output.FormatTable
	}
	return output.FormatJSON
}

// normalizeErr normalizes any error to XError
func normalizeErr(err error) *errors.XError {
	// keychain errors carry their own mapping
	return errors.AsOrWrap(err)
}

func logger() *slog.Logger {
	if GlobalConfig.Logger != nil {
		return GlobalConfig.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// newAccessor opens the resolved backend and wraps it in an Accessor
func newAccessor() (*keychain.Accessor, error) {
	r := GlobalConfig.Resolved
	backend := r.Backend
	if backend == "" {
		backend = config.DefaultBackend
	}
	opts, xe := facilityOptions(backend, r.File.Keyring)
	if xe != nil {
		return nil, xe
	}
	opts.Logger = logger()
	f, err := openFacility(backend, opts)
	if err != nil {
		return nil, err
	}
	return keychain.New(f, keychain.WithLogger(logger()), keychain.WithBackendName(backend)), nil
}

// facilityOptions maps the keyring config section to backend options
func facilityOptions(backend string, kc config.KeyringConfig) (keychain.Options, *errors.XError) {
	opts := keychain.Options{
		Backends:     kc.Backends,
		FileDir:      kc.FileDir,
		KeychainName: kc.KeychainName,
		PassDir:      kc.PassDir,
	}
	if backend != keychain.BackendRing {
		return opts, nil
	}
	passphrase := os.Getenv("INFKC_FILE_PASSPHRASE")
	if passphrase == "" && kc.FilePassphrase != "" {
		// config accepts keyring: references only; plaintext goes through INFKC_FILE_PASSPHRASE
		v, xe := secret.Resolve(kc.FilePassphrase, secret.Options{})
		if xe != nil {
			return keychain.Options{}, xe
		}
		passphrase = v
	}
	opts.FilePassphrase = passphrase
	return opts, nil
}

// resolveService picks --service > profile/env service
func resolveService(flag string) string {
	if flag != "" {
		return flag
	}
	return GlobalConfig.Resolved.Service
}
