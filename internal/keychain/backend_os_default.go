//go:build !windows

package keychain

import "github.com/zalando/go-keyring"

func platformGet(service, account string) (string, error) {
	return keyring.Get(service, account)
}
