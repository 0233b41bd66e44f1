package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zx06/infkeychain/internal/errors"
	"github.com/zx06/infkeychain/internal/output"
)

// CredentialFlags holds flags shared by get/set/delete
type CredentialFlags struct {
	Service       string
	Password      string
	PasswordSet   bool
	PasswordStdin bool
	Update        bool
}

// NewGetCommand creates the get command
func NewGetCommand(w *output.Writer) *cobra.Command {
	flags := &CredentialFlags{}
	cmd := &cobra.Command{
		Use:   "get <username>",
		Short: "Print the password stored for username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], flags, w)
		},
	}
	cmd.Flags().StringVarP(&flags.Service, "service", "s", "", "Service name (default: profile service, then INFKC_SERVICE)")
	return cmd
}

func runGet(cmd *cobra.Command, username string, flags *CredentialFlags, w *output.Writer) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	accessor, err := newAccessor()
	if err != nil {
		return err
	}
	service := resolveService(flags.Service)
	password, err := accessor.Password(cmd.Context(), username, service)
	if err != nil {
		return err
	}
	return w.WriteOK(format, map[string]any{
		"service":  service,
		"username": username,
		"password": password,
	})
}

// NewSetCommand creates the set command
func NewSetCommand(w *output.Writer) *cobra.Command {
	flags := &CredentialFlags{}
	cmd := &cobra.Command{
		Use:   "set <username>",
		Short: "Store a password for username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.PasswordSet = cmd.Flags().Changed("password")
			return runSet(cmd, args[0], flags, w)
		},
	}
	cmd.Flags().StringVarP(&flags.Service, "service", "s", "", "Service name (default: profile service, then INFKC_SERVICE)")
	cmd.Flags().StringVar(&flags.Password, "password", "", "Password value (prefer --password-stdin)")
	cmd.Flags().BoolVar(&flags.PasswordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVarP(&flags.Update, "update", "u", false, "Overwrite an existing entry")
	return cmd
}

func runSet(cmd *cobra.Command, username string, flags *CredentialFlags, w *output.Writer) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	password, err := readPassword(cmd, flags)
	if err != nil {
		return err
	}
	accessor, err := newAccessor()
	if err != nil {
		return err
	}
	service := resolveService(flags.Service)
	if err := accessor.Store(cmd.Context(), username, password, service, flags.Update); err != nil {
		return err
	}
	return w.WriteOK(format, map[string]any{
		"service":  service,
		"username": username,
		"stored":   true,
	})
}

// readPassword returns the password from --password, --password-stdin or a no-echo prompt
func readPassword(cmd *cobra.Command, flags *CredentialFlags) (string, error) {
	if flags.PasswordSet && flags.PasswordStdin {
		return "", errors.New(errors.CodeCfgInvalid, "--password and --password-stdin are mutually exclusive", nil)
	}
	if flags.PasswordSet {
		return flags.Password, nil
	}
	if flags.PasswordStdin {
		return readLine(cmd.InOrStdin())
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New(errors.CodeCfgInvalid, "no password given; use --password-stdin or run in a terminal", nil)
	}
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	b, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, "failed to read password", nil, err)
	}
	return string(b), nil
}

// readLine reads the first line of r without its line terminator
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(errors.CodeInternal, "failed to read password from stdin", nil, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand(w *output.Writer) *cobra.Command {
	flags := &CredentialFlags{}
	cmd := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete the entry for username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], flags, w)
		},
	}
	cmd.Flags().StringVarP(&flags.Service, "service", "s", "", "Service name (default: profile service, then INFKC_SERVICE)")
	return cmd
}

func runDelete(cmd *cobra.Command, username string, flags *CredentialFlags, w *output.Writer) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	accessor, err := newAccessor()
	if err != nil {
		return err
	}
	service := resolveService(flags.Service)
	if err := accessor.Delete(cmd.Context(), username, service); err != nil {
		return err
	}
	return w.WriteOK(format, map[string]any{
		"service":  service,
		"username": username,
		"deleted":  true,
	})
}
