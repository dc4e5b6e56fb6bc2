package clientstate

import (
	"sync"
	"time"
)

// Memory is an in-process Store and Credentials implementation used in tests
// and as the default mirror secondary when no database is configured. TTLs
// are accepted but not enforced; the store lives as long as the process.
type Memory struct {
	mu       sync.RWMutex
	values   map[string]string
	refresh  string
	hasToken bool
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *Memory) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

func (m *Memory) RefreshToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh, m.hasToken
}

func (m *Memory) SetRefreshToken(token string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh = token
	m.hasToken = true
}

func (m *Memory) ClearRefreshToken() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh = ""
	m.hasToken = false
}

// SharedMemory hands out per-device Stores over one process-wide map. It is
// the in-memory stand-in for the Postgres mirror secondary.
type SharedMemory struct {
	mu      sync.RWMutex
	devices map[string]map[string]string
}

func NewSharedMemory() *SharedMemory {
	return &SharedMemory{devices: make(map[string]map[string]string)}
}

// For returns the Store scoped to one device key.
func (s *SharedMemory) For(deviceID string) Store {
	return &sharedMemoryStore{shared: s, deviceID: deviceID}
}

type sharedMemoryStore struct {
	shared   *SharedMemory
	deviceID string
}

func (s *sharedMemoryStore) Get(key string) (string, bool) {
	s.shared.mu.RLock()
	defer s.shared.mu.RUnlock()
	device, ok := s.shared.devices[s.deviceID]
	if !ok {
		return "", false
	}
	v, ok := device[key]
	return v, ok
}

func (s *sharedMemoryStore) Set(key, value string, _ time.Duration) {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	device, ok := s.shared.devices[s.deviceID]
	if !ok {
		device = make(map[string]string)
		s.shared.devices[s.deviceID] = device
	}
	device[key] = value
}

func (s *sharedMemoryStore) Remove(key string) {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	if device, ok := s.shared.devices[s.deviceID]; ok {
		delete(device, key)
	}
}
