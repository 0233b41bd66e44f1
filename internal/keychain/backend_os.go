package keychain

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const BackendOS = "os"

func init() {
	Register(BackendOS, func(Options) (Facility, error) {
		return newOSFacility(), nil
	})
}

// osFacility 使用 zalando/go-keyring 访问系统 keychain
// （macOS Keychain / Secret Service / Windows Credential Manager）。
// go-keyring 只有覆盖式 Set，insert/update 的区分在这里补齐。
type osFacility struct{}

func newOSFacility() *osFacility { return &osFacility{} }

func (o *osFacility) Query(service, account string) (string, error) {
	val, err := platformGet(service, account)
	if err != nil {
		return "", mapOSError(err)
	}
	return val, nil
}

func (o *osFacility) Insert(service, account, password string) error {
	if _, err := o.Query(service, account); err == nil {
		return ErrDuplicateItem
	} else if !stderrors.Is(err, ErrItemNotFound) {
		return err
	}
	return mapOSError(keyring.Set(service, account, password))
}

func (o *osFacility) Update(service, account, password string) error {
	if _, err := o.Query(service, account); err != nil {
		return err
	}
	return mapOSError(keyring.Set(service, account, password))
}

func (o *osFacility) Delete(service, account string) error {
	return mapOSError(keyring.Delete(service, account))
}

func mapOSError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, keyring.ErrNotFound):
		return ErrItemNotFound
	case stderrors.Is(err, keyring.ErrSetDataTooBig):
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	case isAccessDenied(err):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	case isNoInteraction(err):
		return fmt.Errorf("%w: %v", ErrInteractionNotAllowed, err)
	case isUnavailable(err):
		return fmt.Errorf("%w: %v", ErrNotAvailable, err)
	default:
		return err
	}
}

func isAccessDenied(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "access denied") ||
		strings.Contains(s, "user denied") ||
		strings.Contains(s, "canceled") ||
		strings.Contains(s, "cancelled")
}

func isNoInteraction(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "interaction is not allowed") ||
		strings.Contains(s, "is locked")
}

func isUnavailable(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "org.freedesktop.secrets") ||
		strings.Contains(s, "dbus") ||
		strings.Contains(s, "executable file not found")
}
