package keychain

import (
	"context"
	"io"
	"log/slog"
)

// Accessor 把 get/store/delete 翻译为对 Facility 的单次调用，
// 并把结果统一到 ErrorDomain。本身不持有任何跨调用状态。
type Accessor struct {
	facility Facility
	name     string
	logger   *slog.Logger
}

type Option func(*Accessor)

func WithLogger(l *slog.Logger) Option {
	return func(a *Accessor) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithBackendName 只用于日志标注。
func WithBackendName(name string) Option {
	return func(a *Accessor) { a.name = name }
}

func New(f Facility, opts ...Option) *Accessor {
	a := &Accessor{
		facility: f,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Password 返回 (serviceName, username) 下保存的密码。
func (a *Accessor) Password(ctx context.Context, username, serviceName string) (string, error) {
	const op = "get password"
	if username == "" || serviceName == "" {
		return "", newError(op, CodeNilParameter, nil)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pw, err := a.facility.Query(serviceName, username)
	a.trace(ctx, "query", serviceName, username, err)
	if err != nil {
		return "", newError(op, StatusOf(err), err)
	}
	return pw, nil
}

// Store 新建或更新 (serviceName, username) 的密码。
//
// 已存在且 updateExisting=false 时返回 StatusDuplicateItem；
// 查询因“不存在”以外的原因失败且 updateExisting=true 时返回
// CodePreviouslyStoredPasswordMissing。
func (a *Accessor) Store(ctx context.Context, username, password, serviceName string, updateExisting bool) error {
	const op = "store password"
	if username == "" || password == "" || serviceName == "" {
		return newError(op, CodeNilParameter, nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	existing, err := a.facility.Query(serviceName, username)
	a.trace(ctx, "query", serviceName, username, err)
	if err != nil {
		status := StatusOf(err)
		if status != StatusItemNotFound {
			if updateExisting {
				return newError(op, CodePreviouslyStoredPasswordMissing, err)
			}
			return newError(op, status, err)
		}
		err = a.facility.Insert(serviceName, username, password)
		a.trace(ctx, "insert", serviceName, username, err)
		if err != nil {
			return newError(op, StatusOf(err), err)
		}
		return nil
	}

	if !updateExisting {
		return newError(op, StatusDuplicateItem, ErrDuplicateItem)
	}
	if existing == password {
		a.logger.DebugContext(ctx, "password unchanged, skipping update", "service", serviceName, "account", username)
		return nil
	}
	err = a.facility.Update(serviceName, username, password)
	a.trace(ctx, "update", serviceName, username, err)
	if err != nil {
		return newError(op, StatusOf(err), err)
	}
	return nil
}

// Delete 删除 (serviceName, username) 条目；不存在时透传 StatusItemNotFound。
func (a *Accessor) Delete(ctx context.Context, username, serviceName string) error {
	const op = "delete item"
	if username == "" || serviceName == "" {
		return newError(op, CodeNilParameter, nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := a.facility.Delete(serviceName, username)
	a.trace(ctx, "delete", serviceName, username, err)
	if err != nil {
		return newError(op, StatusOf(err), err)
	}
	return nil
}

// trace 记录一次 facility 调用；从不记录密码。
func (a *Accessor) trace(ctx context.Context, call, service, account string, err error) {
	a.logger.DebugContext(ctx, "keychain facility call",
		"call", call,
		"backend", a.name,
		"service", service,
		"account", account,
		"status", StatusOf(err),
	)
}
