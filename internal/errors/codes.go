package errors

// Code 是稳定错误码（字符串），供 AI/agent 与程序判断。
// 只增不改、不复用旧含义。
type Code string

const (
	// Config / args
	CodeCfgNotFound    Code = "INFKC_CFG_NOT_FOUND"
	CodeCfgInvalid     Code = "INFKC_CFG_INVALID"
	CodeSecretNotFound Code = "INFKC_SECRET_NOT_FOUND"
	CodeNilParameter   Code = "INFKC_NIL_PARAMETER"

	// Keychain facility
	CodeItemNotFound       Code = "INFKC_ITEM_NOT_FOUND"
	CodeDuplicateItem      Code = "INFKC_DUPLICATE_ITEM"
	CodePasswordMissing    Code = "INFKC_PASSWORD_MISSING"
	CodeAccessDenied       Code = "INFKC_ACCESS_DENIED"
	CodeBackendUnavailable Code = "INFKC_BACKEND_UNAVAILABLE"
	CodeFacilityFailed     Code = "INFKC_FACILITY_FAILED"

	// Internal
	CodeInternal Code = "INFKC_INTERNAL"
)

func AllCodes() []Code {
	return []Code{
		CodeCfgNotFound,
		CodeCfgInvalid,
		CodeSecretNotFound,
		CodeNilParameter,
		CodeItemNotFound,
		CodeDuplicateItem,
		CodePasswordMissing,
		CodeAccessDenied,
		CodeBackendUnavailable,
		CodeFacilityFailed,
		CodeInternal,
	}
}
