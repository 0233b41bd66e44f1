package keychain

import (
	stderrors "errors"
	"fmt"

	"github.com/zx06/infkeychain/internal/errors"
)

// ErrorDomain 是本包所有错误共用的 domain 标识。
const ErrorDomain = "InfKeychainErrorDomain"

// 应用层保留错误码（与底层 facility 的状态码共存于同一 domain）。
const (
	CodeNilParameter                    = -2000
	CodePreviouslyStoredPasswordMissing = -1999
)

// facility 状态码，沿用经典 keychain OSStatus 取值；各 backend 的错误都映射到这里。
const (
	StatusItemNotFound          = -25300
	StatusDuplicateItem         = -25299
	StatusAuthFailed            = -25293
	StatusNotAvailable          = -25291
	StatusInteractionNotAllowed = -25308
	StatusParam                 = -50
	StatusInternal              = -2070
)

// Facility 实现用这些哨兵错误报告结果（可用 %w 包装）。
var (
	ErrItemNotFound          = stderrors.New("the specified item could not be found in the keychain")
	ErrDuplicateItem         = stderrors.New("the specified item already exists in the keychain")
	ErrAccessDenied          = stderrors.New("access to the keychain item was denied")
	ErrInteractionNotAllowed = stderrors.New("user interaction is not allowed")
	ErrInvalidData           = stderrors.New("the keychain rejected the item data")
	ErrNotAvailable          = stderrors.New("no keychain backend is available")
)

// Error 是带 domain 与整数错误码的结构化错误。
type Error struct {
	Domain string
	Code   int
	Op     string
	cause  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s %s (%d)", e.Op, describe(e.Code), e.Code)
	if e.cause != nil && !isSentinel(e.cause) {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// XError 转换为 CLI/MCP 层使用的稳定错误码。
func (e *Error) XError() *errors.XError {
	details := map[string]any{"domain": e.Domain, "status": e.Code}
	if e.Op != "" {
		details["op"] = e.Op
	}
	msg := describe(e.Code)
	var code errors.Code
	switch e.Code {
	case CodeNilParameter:
		code = errors.CodeNilParameter
	case CodePreviouslyStoredPasswordMissing:
		code = errors.CodePasswordMissing
	case StatusItemNotFound:
		code = errors.CodeItemNotFound
	case StatusDuplicateItem:
		code = errors.CodeDuplicateItem
	case StatusAuthFailed, StatusInteractionNotAllowed:
		code = errors.CodeAccessDenied
	case StatusNotAvailable:
		code = errors.CodeBackendUnavailable
	default:
		code = errors.CodeFacilityFailed
	}
	if e.cause != nil && !isSentinel(e.cause) {
		return errors.Wrap(code, msg, details, e.cause)
	}
	return errors.New(code, msg, details)
}

func newError(op string, code int, cause error) *Error {
	return &Error{Domain: ErrorDomain, Code: code, Op: op, cause: cause}
}

// StatusOf 把 facility 返回的错误映射为状态码；nil 返回 0。
func StatusOf(err error) int {
	var ke *Error
	switch {
	case err == nil:
		return 0
	case stderrors.As(err, &ke):
		return ke.Code
	case stderrors.Is(err, ErrItemNotFound):
		return StatusItemNotFound
	case stderrors.Is(err, ErrDuplicateItem):
		return StatusDuplicateItem
	case stderrors.Is(err, ErrAccessDenied):
		return StatusAuthFailed
	case stderrors.Is(err, ErrInteractionNotAllowed):
		return StatusInteractionNotAllowed
	case stderrors.Is(err, ErrInvalidData):
		return StatusParam
	case stderrors.Is(err, ErrNotAvailable):
		return StatusNotAvailable
	default:
		return StatusInternal
	}
}

// CodeOf 返回 err 中 *Error 的错误码；不是本 domain 的错误返回 0, false。
func CodeOf(err error) (int, bool) {
	var ke *Error
	if stderrors.As(err, &ke) {
		return ke.Code, true
	}
	return 0, false
}

func IsNotFound(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == StatusItemNotFound
}

func IsDuplicate(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == StatusDuplicateItem
}

func IsNilParameter(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == CodeNilParameter
}

func describe(code int) string {
	switch code {
	case CodeNilParameter:
		return "required parameter is missing"
	case CodePreviouslyStoredPasswordMissing:
		return "previously stored password is missing"
	case StatusItemNotFound:
		return "item not found"
	case StatusDuplicateItem:
		return "duplicate item"
	case StatusAuthFailed:
		return "access denied"
	case StatusInteractionNotAllowed:
		return "interaction not allowed"
	case StatusParam:
		return "invalid item data"
	case StatusNotAvailable:
		return "keychain not available"
	default:
		return "keychain failure"
	}
}

func isSentinel(err error) bool {
	switch err {
	case ErrItemNotFound, ErrDuplicateItem, ErrAccessDenied,
		ErrInteractionNotAllowed, ErrInvalidData, ErrNotAvailable:
		return true
	}
	return false
}
