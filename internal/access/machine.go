package access

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/crypto"
	"github.com/illarion/pinvault/internal/metrics"
)

// CodeLength is the number of digits in a PIN
const CodeLength = 6

// ShakeDuration is how long the mismatch feedback runs
const ShakeDuration = 400 * time.Millisecond

var (
	ErrInvalidPIN           = errors.New("pin must be exactly 6 digits")
	ErrWrongPIN             = errors.New("wrong pin")
	ErrNotProvisioned       = errors.New("no pin has been set")
	ErrNotLocked            = errors.New("vault is not locked")
	ErrInvalidDuration      = errors.New("lock duration must be positive or never")
	ErrBiometricUnavailable = errors.New("biometric unlock is not available")
	ErrBiometricFailed      = errors.New("biometric authentication failed")
)

// State of the access machine
type State int

const (
	Unprovisioned State = iota
	Locked
	Unlocked
)

func (s State) String() string {
	switch s {
	case Unprovisioned:
		return "unprovisioned"
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome of a keypad entry
type Outcome int

const (
	// OutcomePending means the buffer is not full yet
	OutcomePending Outcome = iota
	// OutcomeProvisioned means the first PIN was stored; enter it again to unlock
	OutcomeProvisioned
	OutcomeUnlocked
	// OutcomeMismatch means the PIN was wrong and the buffer was cleared
	OutcomeMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeProvisioned:
		return "provisioned"
	case OutcomeUnlocked:
		return "unlocked"
	case OutcomeMismatch:
		return "mismatch"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// FeedbackKind identifies a user-facing signal
type FeedbackKind int

const (
	FeedbackShake FeedbackKind = iota
)

// Feedback is emitted on a PIN mismatch
type Feedback struct {
	Kind     FeedbackKind
	Duration time.Duration
}

// BiometricResult is what the platform prompt reports
type BiometricResult struct {
	Success   bool
	ErrorCode string
}

// Biometric is the platform capability used for PIN-less unlock
type Biometric interface {
	Authenticate(ctx context.Context, prompt string) (BiometricResult, error)
}

// BiometricPrompt is shown by the platform during UnlockWithBiometric
const BiometricPrompt = "Unlock vault"

// Machine is the access control state machine
type Machine struct {
	mu sync.Mutex

	store      Store
	biometric  Biometric
	log        *zap.Logger
	metrics    *metrics.Metrics
	onFeedback func(Feedback)
	iterations int

	state State
	buf   []byte
}

// Option configures a Machine
type Option func(*Machine)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// WithMetrics sets the metrics sink
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Machine) { m.metrics = mt }
}

// WithBiometric sets the biometric capability
func WithBiometric(b Biometric) Option {
	return func(m *Machine) { m.biometric = b }
}

// WithFeedback registers a callback for mismatch feedback. It runs
// outside the machine lock.
func WithFeedback(fn func(Feedback)) Option {
	return func(m *Machine) { m.onFeedback = fn }
}

// WithIterations sets the PBKDF2 work factor for newly stored PINs
func WithIterations(n int) Option {
	return func(m *Machine) { m.iterations = n }
}

// New creates a machine over store. A store without a lock code starts
// Unprovisioned, otherwise the machine starts Locked.
func New(store Store, opts ...Option) (*Machine, error) {
	m := &Machine{
		store:      store,
		log:        zap.NewNop(),
		iterations: crypto.DefaultIters,
		buf:        make([]byte, 0, CodeLength),
	}
	for _, opt := range opts {
		opt(m)
	}

	code, err := store.LockCode()
	if err != nil {
		return nil, fmt.Errorf("failed to read lock code: %w", err)
	}
	if code == "" {
		m.state = Unprovisioned
	} else {
		m.state = Locked
	}

	return m, nil
}

// State returns the current state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Buffer returns how many digits have been entered
func (m *Machine) Buffer() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buf)
}

// Press appends a digit (0-9). When the buffer reaches CodeLength it is
// evaluated and cleared.
func (m *Machine) Press(digit int) (Outcome, error) {
	if digit < 0 || digit > 9 {
		return OutcomePending, fmt.Errorf("%w: %d is not a digit", ErrInvalidPIN, digit)
	}

	m.mu.Lock()
	if m.state == Unlocked {
		m.mu.Unlock()
		return OutcomePending, ErrNotLocked
	}

	m.buf = append(m.buf, byte('0'+digit))
	if len(m.buf) < CodeLength {
		m.mu.Unlock()
		return OutcomePending, nil
	}

	code := make([]byte, CodeLength)
	copy(code, m.buf)
	m.clearBuffer()
	out, err := m.evaluate(code)
	m.mu.Unlock()

	m.notify(out)
	return out, err
}

// Backspace removes the last entered digit
func (m *Machine) Backspace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.buf); n > 0 {
		m.buf[n-1] = 0
		m.buf = m.buf[:n-1]
	}
}

// Submit evaluates a complete code, discarding any partial keypad entry.
func (m *Machine) Submit(code string) (Outcome, error) {
	if !validPIN(code) {
		return OutcomePending, ErrInvalidPIN
	}

	m.mu.Lock()
	if m.state == Unlocked {
		m.mu.Unlock()
		return OutcomePending, ErrNotLocked
	}
	m.clearBuffer()
	out, err := m.evaluate([]byte(code))
	m.mu.Unlock()

	m.notify(out)
	return out, err
}

// evaluate must be called with mu held. It clears code.
func (m *Machine) evaluate(code []byte) (Outcome, error) {
	defer crypto.ClearBytes(code)

	if m.state == Unprovisioned {
		h, err := crypto.HashPINWithIterations(code, m.iterations)
		if err != nil {
			return OutcomePending, fmt.Errorf("failed to hash pin: %w", err)
		}
		if err := m.store.SetLockCode(h.String()); err != nil {
			return OutcomePending, fmt.Errorf("failed to store lock code: %w", err)
		}
		m.state = Locked
		m.log.Info("pin provisioned")
		return OutcomeProvisioned, nil
	}

	ok, err := m.verify(code)
	if err != nil {
		return OutcomePending, err
	}
	if !ok {
		m.metrics.RecordUnlock("pin", "mismatch")
		m.log.Info("pin mismatch")
		return OutcomeMismatch, nil
	}

	m.state = Unlocked
	m.metrics.RecordUnlock("pin", "unlocked")
	m.log.Info("unlocked", zap.String("method", "pin"))
	return OutcomeUnlocked, nil
}

// verify must be called with mu held
func (m *Machine) verify(code []byte) (bool, error) {
	stored, err := m.store.LockCode()
	if err != nil {
		return false, fmt.Errorf("failed to read lock code: %w", err)
	}
	if stored == "" {
		return false, ErrNotProvisioned
	}
	h, err := crypto.ParsePINHash(stored)
	if err != nil {
		return false, fmt.Errorf("failed to parse lock code: %w", err)
	}
	return h.Verify(code), nil
}

func (m *Machine) notify(out Outcome) {
	if out == OutcomeMismatch && m.onFeedback != nil {
		m.onFeedback(Feedback{Kind: FeedbackShake, Duration: ShakeDuration})
	}
}

func (m *Machine) clearBuffer() {
	crypto.ClearBytes(m.buf)
	m.buf = m.buf[:0]
}

// UnlockWithBiometric unlocks through the platform capability. It needs a
// provisioned PIN, the biometric setting and a capability. The mutex is
// not held while the prompt is showing.
func (m *Machine) UnlockWithBiometric(ctx context.Context) error {
	m.mu.Lock()
	if m.state == Unprovisioned {
		m.mu.Unlock()
		return fmt.Errorf("%w: no pin has been set", ErrBiometricUnavailable)
	}
	if m.state == Unlocked {
		m.mu.Unlock()
		return nil
	}
	enabled, err := m.store.Biometric()
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to read biometric setting: %w", err)
	}
	if !enabled || m.biometric == nil {
		return ErrBiometricUnavailable
	}

	res, err := m.biometric.Authenticate(ctx, BiometricPrompt)
	if err != nil {
		m.metrics.RecordUnlock("biometric", "error")
		return fmt.Errorf("%w: %w", ErrBiometricFailed, err)
	}
	if !res.Success {
		m.metrics.RecordUnlock("biometric", "rejected")
		m.log.Info("biometric rejected", zap.String("code", res.ErrorCode))
		return fmt.Errorf("%w: %s", ErrBiometricFailed, res.ErrorCode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Locked {
		m.state = Unlocked
		m.clearBuffer()
	}
	m.metrics.RecordUnlock("biometric", "unlocked")
	m.log.Info("unlocked", zap.String("method", "biometric"))
	return nil
}

// Lock forces the Locked state. It has no effect while Unprovisioned.
func (m *Machine) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Unlocked {
		m.state = Locked
		m.log.Info("locked")
	}
	m.clearBuffer()
}

// Background records at as the time the app left the foreground.
func (m *Machine) Background(at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SetStartTime(at); err != nil {
		return fmt.Errorf("failed to record background time: %w", err)
	}
	m.log.Debug("backgrounded", zap.Time("at", at))
	return nil
}

// Foreground locks if the time since the recorded background timestamp
// has reached the lock duration. The timestamp is consumed. Without a
// recorded timestamp nothing changes.
func (m *Machine) Foreground(at time.Time) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start, ok, err := m.store.StartTime()
	if err != nil {
		return m.state, fmt.Errorf("failed to read background time: %w", err)
	}
	if !ok {
		return m.state, nil
	}
	if err := m.store.ClearStartTime(); err != nil {
		return m.state, fmt.Errorf("failed to clear background time: %w", err)
	}

	d, err := m.lockDuration()
	if err != nil {
		return m.state, err
	}

	elapsed := at.Sub(start)
	if m.state == Unlocked && d.Expired(elapsed) {
		m.state = Locked
		m.clearBuffer()
		m.metrics.RecordAutoLock()
		m.log.Info("auto-locked",
			zap.Duration("elapsed", elapsed),
			zap.Stringer("lock_duration", d),
		)
	}
	return m.state, nil
}

// LockDuration returns the configured lock duration
func (m *Machine) LockDuration() (LockDuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lockDuration()
}

func (m *Machine) lockDuration() (LockDuration, error) {
	ms, ok, err := m.store.LockDurationMs()
	if err != nil {
		return 0, fmt.Errorf("failed to read lock duration: %w", err)
	}
	if !ok {
		return DefaultLockDuration, nil
	}
	return LockDurationFromMillis(ms), nil
}

// SetLockDuration persists d
func (m *Machine) SetLockDuration(d LockDuration) error {
	if d == 0 {
		return ErrInvalidDuration
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SetLockDurationMs(d.Millis()); err != nil {
		return fmt.Errorf("failed to store lock duration: %w", err)
	}
	return nil
}

// ChangePIN replaces the stored PIN after verifying the old one.
func (m *Machine) ChangePIN(oldPIN, newPIN string) error {
	if !validPIN(oldPIN) || !validPIN(newPIN) {
		return ErrInvalidPIN
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Unprovisioned {
		return ErrNotProvisioned
	}

	old := []byte(oldPIN)
	defer crypto.ClearBytes(old)
	ok, err := m.verify(old)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPIN
	}

	next := []byte(newPIN)
	defer crypto.ClearBytes(next)
	h, err := crypto.HashPINWithIterations(next, m.iterations)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	if err := m.store.SetLockCode(h.String()); err != nil {
		return fmt.Errorf("failed to store lock code: %w", err)
	}
	m.log.Info("pin changed")
	return nil
}

// VerifyPIN checks pin against the stored code without changing state.
func (m *Machine) VerifyPIN(pin []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ok, err := m.verify(pin)
	return err == nil && ok
}

func validPIN(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
