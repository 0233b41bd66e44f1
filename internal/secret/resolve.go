package secret

import (
	"context"
	"strings"

	"github.com/zx06/infkeychain/internal/errors"
	"github.com/zx06/infkeychain/internal/keychain"
)

const keyringPrefix = "keyring:"

// DefaultService 是 keyring:<account> 省略 service 时使用的 service name。
const DefaultService = "infkeychain"

// Options 控制 secret 解析行为。
type Options struct {
	AllowPlaintext bool               // 是否允许明文（默认 false）
	Accessor       *keychain.Accessor // 可注入的 accessor（nil 则用 keychain.Default()）
	DefaultService string             // 为空则用 DefaultService
}

// Resolve 解析 secret 值：
//  1. keyring:<service>/<account> 或 keyring:<account> → 从 keychain 读取
//  2. 否则若为明文且允许明文 → 直接返回
//  3. 否则报错
func Resolve(raw string, opts Options) (string, *errors.XError) {
	if strings.HasPrefix(raw, keyringPrefix) {
		service, account, xe := parseKeyringRef(strings.TrimPrefix(raw, keyringPrefix), opts.DefaultService)
		if xe != nil {
			return "", xe
		}
		a := opts.Accessor
		if a == nil {
			a = keychain.Default()
		}
		val, err := a.Password(context.Background(), account, service)
		if err != nil {
			return "", errors.Wrap(errors.CodeSecretNotFound, "failed to read secret from keyring",
				map[string]any{"service": service, "account": account, "status": keychain.StatusOf(err)}, err)
		}
		return val, nil
	}
	// 明文
	if opts.AllowPlaintext {
		return raw, nil
	}
	return "", errors.New(errors.CodeCfgInvalid, "plaintext secret not allowed; use keyring: reference or enable plaintext explicitly", nil)
}

// parseKeyringRef 拆分 <service>/<account>；没有 "/" 时使用默认 service。
func parseKeyringRef(ref, defaultService string) (string, string, *errors.XError) {
	if defaultService == "" {
		defaultService = DefaultService
	}
	service, account := defaultService, ref
	if i := strings.Index(ref, "/"); i >= 0 {
		service, account = ref[:i], ref[i+1:]
	}
	if service == "" || account == "" {
		return "", "", errors.New(errors.CodeCfgInvalid, "invalid keyring reference", map[string]any{"ref": keyringPrefix + ref})
	}
	return service, account, nil
}

// IsKeyringRef 判断值是否为 keyring 引用。
func IsKeyringRef(s string) bool {
	return strings.HasPrefix(s, keyringPrefix)
}
