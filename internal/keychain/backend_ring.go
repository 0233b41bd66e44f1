package keychain

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"sync"

	ring "github.com/99designs/keyring"
)

const BackendRing = "keyring"

func init() {
	Register(BackendRing, func(opts Options) (Facility, error) {
		return newRingFacility(opts, ring.Open)
	})
}

var knownRingBackends = map[string]ring.BackendType{
	string(ring.SecretServiceBackend): ring.SecretServiceBackend,
	string(ring.KeychainBackend):      ring.KeychainBackend,
	string(ring.WinCredBackend):       ring.WinCredBackend,
	string(ring.KeyCtlBackend):        ring.KeyCtlBackend,
	string(ring.KWalletBackend):       ring.KWalletBackend,
	string(ring.PassBackend):          ring.PassBackend,
	string(ring.FileBackend):          ring.FileBackend,
}

// AvailableRingBackends 返回当前平台上 99designs/keyring 可用的 backend。
func AvailableRingBackends() []string {
	avail := ring.AvailableBackends()
	out := make([]string, 0, len(avail))
	for _, b := range avail {
		out = append(out, string(b))
	}
	return out
}

// ringFacility 基于 99designs/keyring；每个 service 对应一个 keyring，
// 首次使用时打开并缓存。条目 key 为 account。
type ringFacility struct {
	cfg  ring.Config
	open func(ring.Config) (ring.Keyring, error)

	mu    sync.Mutex
	rings map[string]ring.Keyring
}

func newRingFacility(opts Options, open func(ring.Config) (ring.Keyring, error)) (*ringFacility, error) {
	cfg := ring.Config{
		KeychainName:     opts.KeychainName,
		FileDir:          opts.FileDir,
		PassDir:          opts.PassDir,
		FilePasswordFunc: ring.TerminalPrompt,
	}
	if opts.FilePassphrase != "" {
		cfg.FilePasswordFunc = ring.FixedStringPrompt(opts.FilePassphrase)
	}
	for _, name := range opts.Backends {
		bt, ok := knownRingBackends[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown keyring backend %q", ErrNotAvailable, name)
		}
		cfg.AllowedBackends = append(cfg.AllowedBackends, bt)
	}
	return &ringFacility{cfg: cfg, open: open, rings: map[string]ring.Keyring{}}, nil
}

func (r *ringFacility) keyringFor(service string) (ring.Keyring, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kr, ok := r.rings[service]; ok {
		return kr, nil
	}
	cfg := r.cfg
	cfg.ServiceName = service
	kr, err := r.open(cfg)
	if err != nil {
		return nil, mapRingError(err)
	}
	r.rings[service] = kr
	return kr, nil
}

func (r *ringFacility) Query(service, account string) (string, error) {
	item, err := r.get(service, account)
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

func (r *ringFacility) Insert(service, account, password string) error {
	kr, err := r.keyringFor(service)
	if err != nil {
		return err
	}
	if _, err := kr.Get(account); err == nil {
		return ErrDuplicateItem
	} else if err = mapRingError(err); !stderrors.Is(err, ErrItemNotFound) {
		return err
	}
	return mapRingError(kr.Set(ring.Item{
		Key:   account,
		Data:  []byte(password),
		Label: fmt.Sprintf("%s (%s)", service, account),
	}))
}

func (r *ringFacility) Update(service, account, password string) error {
	item, err := r.get(service, account)
	if err != nil {
		return err
	}
	kr, err := r.keyringFor(service)
	if err != nil {
		return err
	}
	item.Data = []byte(password)
	return mapRingError(kr.Set(item))
}

func (r *ringFacility) Delete(service, account string) error {
	if _, err := r.get(service, account); err != nil {
		return err
	}
	kr, err := r.keyringFor(service)
	if err != nil {
		return err
	}
	return mapRingError(kr.Remove(account))
}

func (r *ringFacility) get(service, account string) (ring.Item, error) {
	kr, err := r.keyringFor(service)
	if err != nil {
		return ring.Item{}, err
	}
	item, err := kr.Get(account)
	if err != nil {
		return ring.Item{}, mapRingError(err)
	}
	return item, nil
}

func mapRingError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, ring.ErrKeyNotFound), stderrors.Is(err, fs.ErrNotExist):
		return ErrItemNotFound
	case stderrors.Is(err, ring.ErrNoAvailImpl):
		return fmt.Errorf("%w: %v", ErrNotAvailable, err)
	case isAccessDenied(err):
		return fmt.Errorf("%w: %v", ErrAccessDenied, err)
	default:
		return err
	}
}
