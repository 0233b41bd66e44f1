package keychain

import (
	"log/slog"
	"sort"
	"sync"
)

// Facility 是底层安全存储的最小抽象，按 (service, account) 寻址。
// 结果通过 ErrItemNotFound 等哨兵错误报告。
type Facility interface {
	Query(service, account string) (string, error)
	Insert(service, account, password string) error
	Update(service, account, password string) error
	Delete(service, account string) error
}

// Options 是打开 backend 时的参数；各 backend 只读取自己关心的字段。
type Options struct {
	Logger *slog.Logger

	// 以下仅 "keyring" backend 使用
	Backends       []string
	FileDir        string
	FilePassphrase string
	KeychainName   string
	PassDir        string
}

// Opener 根据 Options 打开一个 Facility。
type Opener func(opts Options) (Facility, error)

var (
	mu      sync.RWMutex
	openers = map[string]Opener{}
)

func Register(name string, o Opener) {
	mu.Lock()
	defer mu.Unlock()
	if name == "" {
		panic("keychain.Register: empty name")
	}
	if o == nil {
		panic("keychain.Register: nil opener")
	}
	if _, exists := openers[name]; exists {
		panic("keychain.Register: duplicate backend: " + name)
	}
	openers[name] = o
}

func Lookup(name string) (Opener, bool) {
	mu.RLock()
	defer mu.RUnlock()
	o, ok := openers[name]
	return o, ok
}

// RegisteredNames 按字母序返回已注册的 backend 名称。
func RegisteredNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(openers))
	for k := range openers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open 打开名为 name 的 backend；未注册时返回 StatusNotAvailable。
func Open(name string, opts Options) (Facility, error) {
	o, ok := Lookup(name)
	if !ok {
		return nil, newError("open", StatusNotAvailable, ErrNotAvailable)
	}
	f, err := o(opts)
	if err != nil {
		return nil, newError("open", StatusOf(err), err)
	}
	return f, nil
}
