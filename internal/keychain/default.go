package keychain

import (
	"context"
	"sync"
)

var (
	defaultOnce     sync.Once
	defaultAccessor *Accessor
)

// Default 返回基于 "os" backend 的共享 Accessor。
func Default() *Accessor {
	defaultOnce.Do(func() {
		defaultAccessor = New(newOSFacility(), WithBackendName(BackendOS))
	})
	return defaultAccessor
}

func Password(username, serviceName string) (string, error) {
	return Default().Password(context.Background(), username, serviceName)
}

func Store(username, password, serviceName string, updateExisting bool) error {
	return Default().Store(context.Background(), username, password, serviceName, updateExisting)
}

func Delete(username, serviceName string) error {
	return Default().Delete(context.Background(), username, serviceName)
}
