package keychain

import "sync"

const BackendMemory = "memory"

func init() {
	Register(BackendMemory, func(Options) (Facility, error) {
		return NewMemoryFacility(), nil
	})
}

// MemoryFacility 是进程内实现，用于测试与 dry run。
// FailQuery/FailInsert/FailUpdate/FailDelete 非 nil 时对应调用直接返回该错误。
type MemoryFacility struct {
	mu   sync.RWMutex
	data map[string]map[string]string // service -> account -> password

	FailQuery  error
	FailInsert error
	FailUpdate error
	FailDelete error

	calls int
}

func NewMemoryFacility() *MemoryFacility {
	return &MemoryFacility{data: make(map[string]map[string]string)}
}

func (m *MemoryFacility) Query(service, account string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.FailQuery != nil {
		return "", m.FailQuery
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[service][account]; ok {
		return v, nil
	}
	return "", ErrItemNotFound
}

func (m *MemoryFacility) Insert(service, account, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.FailInsert != nil {
		return m.FailInsert
	}
	if _, ok := m.data[service][account]; ok {
		return ErrDuplicateItem
	}
	if m.data[service] == nil {
		m.data[service] = make(map[string]string)
	}
	m.data[service][account] = password
	return nil
}

func (m *MemoryFacility) Update(service, account, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.FailUpdate != nil {
		return m.FailUpdate
	}
	if _, ok := m.data[service][account]; !ok {
		return ErrItemNotFound
	}
	m.data[service][account] = password
	return nil
}

func (m *MemoryFacility) Delete(service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.FailDelete != nil {
		return m.FailDelete
	}
	if _, ok := m.data[service][account]; !ok {
		return ErrItemNotFound
	}
	delete(m.data[service], account)
	return nil
}

// CallCount 返回累计的 facility 调用次数。
func (m *MemoryFacility) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
