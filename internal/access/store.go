package access

import (
	"sync"
	"time"
)

// Store persists the security settings. *storage.Storage implements it.
type Store interface {
	LockCode() (string, error)
	SetLockCode(code string) error
	Biometric() (bool, error)
	LockDurationMs() (int64, bool, error)
	SetLockDurationMs(ms int64) error
	StartTime() (time.Time, bool, error)
	SetStartTime(t time.Time) error
	ClearStartTime() error
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu         sync.Mutex
	lockCode   string
	biometric  bool
	durationMs *int64
	startTime  *time.Time
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LockCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockCode, nil
}

func (s *MemoryStore) SetLockCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockCode = code
	return nil
}

func (s *MemoryStore) Biometric() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.biometric, nil
}

// SetBiometric enables or disables biometric unlock
func (s *MemoryStore) SetBiometric(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.biometric = enabled
	return nil
}

func (s *MemoryStore) LockDurationMs() (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.durationMs == nil {
		return 0, false, nil
	}
	return *s.durationMs, true, nil
}

func (s *MemoryStore) SetLockDurationMs(ms int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durationMs = &ms
	return nil
}

func (s *MemoryStore) StartTime() (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime == nil {
		return time.Time{}, false, nil
	}
	return *s.startTime, true, nil
}

func (s *MemoryStore) SetStartTime(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = &t
	return nil
}

func (s *MemoryStore) ClearStartTime() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = nil
	return nil
}
