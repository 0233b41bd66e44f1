package errors

// ExitCode 是进程退出码（稳定契约）。
type ExitCode int

const (
	ExitOK ExitCode = 0

	// 2: 参数/配置错误
	ExitConfig ExitCode = 2

	// 3: keychain 不可用或拒绝访问
	ExitUnavailable ExitCode = 3

	// 4: 条目不存在
	ExitNotFound ExitCode = 4

	// 5: 写入冲突（重复条目 / 原密码缺失）
	ExitConflict ExitCode = 5

	// 10: 内部错误
	ExitInternal ExitCode = 10
)

func ExitCodeFor(code Code) ExitCode {
	switch code {
	case CodeCfgNotFound, CodeCfgInvalid, CodeSecretNotFound, CodeNilParameter:
		return ExitConfig
	case CodeAccessDenied, CodeBackendUnavailable:
		return ExitUnavailable
	case CodeItemNotFound:
		return ExitNotFound
	case CodeDuplicateItem, CodePasswordMissing:
		return ExitConflict
	case CodeFacilityFailed, CodeInternal:
		fallthrough
	default:
		return ExitInternal
	}
}
