//go:build windows

package keychain

import (
	"strings"

	"github.com/zalando/go-keyring"
)

func platformGet(service, account string) (string, error) {
	val, err := keyring.Get(service, account)
	if err != nil {
		return "", err
	}
	// 通过 cmdkey 写入的凭据在字符间带 null 字节（UTF-16 遗留问题）
	return strings.ReplaceAll(val, "\x00", ""), nil
}
