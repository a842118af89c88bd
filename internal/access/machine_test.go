package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/illarion/pinvault/internal/crypto"
)

type fakeBiometric struct {
	result BiometricResult
	err    error
	calls  int
}

func (f *fakeBiometric) Authenticate(_ context.Context, _ string) (BiometricResult, error) {
	f.calls++
	return f.result, f.err
}

func newMachine(t *testing.T, store Store, opts ...Option) *Machine {
	t.Helper()
	opts = append([]Option{WithIterations(crypto.MinIters), WithLogger(zaptest.NewLogger(t))}, opts...)
	m, err := New(store, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

// provisioned returns an unlocked machine whose PIN is 123456
func provisioned(t *testing.T, store Store, opts ...Option) *Machine {
	t.Helper()
	m := newMachine(t, store, opts...)
	if out, err := m.Submit("123456"); err != nil || out != OutcomeProvisioned {
		t.Fatalf("Expected provisioned, got %v, %v", out, err)
	}
	if out, err := m.Submit("123456"); err != nil || out != OutcomeUnlocked {
		t.Fatalf("Expected unlocked, got %v, %v", out, err)
	}
	return m
}

func pressAll(t *testing.T, m *Machine, code string) Outcome {
	t.Helper()
	var out Outcome
	for i, c := range code {
		var err error
		out, err = m.Press(int(c - '0'))
		if err != nil {
			t.Fatalf("Press failed: %v", err)
		}
		if i < len(code)-1 && out != OutcomePending {
			t.Fatalf("Expected pending after %d digits, got %v", i+1, out)
		}
	}
	return out
}

func TestProvisionThenVerify(t *testing.T) {
	store := NewMemoryStore()
	m := newMachine(t, store)

	if m.State() != Unprovisioned {
		t.Fatalf("Expected unprovisioned, got %v", m.State())
	}

	if out := pressAll(t, m, "123456"); out != OutcomeProvisioned {
		t.Fatalf("Expected provisioned, got %v", out)
	}
	if m.State() != Locked {
		t.Fatalf("Expected locked after provisioning, got %v", m.State())
	}
	if m.Buffer() != 0 {
		t.Errorf("Expected cleared buffer, got %d", m.Buffer())
	}

	code, _ := store.LockCode()
	if code == "" || code == "123456" {
		t.Fatalf("Expected a hashed lock code, got %q", code)
	}

	if out := pressAll(t, m, "123456"); out != OutcomeUnlocked {
		t.Fatalf("Expected unlocked, got %v", out)
	}
	if m.State() != Unlocked {
		t.Errorf("Expected unlocked, got %v", m.State())
	}
}

func TestMismatchShakesAndClears(t *testing.T) {
	var shakes []Feedback
	store := NewMemoryStore()
	m := provisioned(t, store, WithFeedback(func(f Feedback) { shakes = append(shakes, f) }))
	m.Lock()

	if out := pressAll(t, m, "999999"); out != OutcomeMismatch {
		t.Fatalf("Expected mismatch, got %v", out)
	}
	if m.State() != Locked {
		t.Errorf("Expected locked, got %v", m.State())
	}
	if m.Buffer() != 0 {
		t.Errorf("Expected cleared buffer, got %d", m.Buffer())
	}
	if len(shakes) != 1 || shakes[0].Kind != FeedbackShake || shakes[0].Duration != ShakeDuration {
		t.Errorf("Expected one shake, got %+v", shakes)
	}

	// No lockout: the right PIN still works
	if out := pressAll(t, m, "123456"); out != OutcomeUnlocked {
		t.Errorf("Expected unlocked after mismatch, got %v", out)
	}
}

func TestBackspaceAndValidation(t *testing.T) {
	m := newMachine(t, NewMemoryStore())

	if _, err := m.Press(10); !errors.Is(err, ErrInvalidPIN) {
		t.Errorf("Expected ErrInvalidPIN, got %v", err)
	}

	for _, d := range []int{1, 2, 3} {
		if _, err := m.Press(d); err != nil {
			t.Fatalf("Press failed: %v", err)
		}
	}
	m.Backspace()
	if m.Buffer() != 2 {
		t.Errorf("Expected 2 digits, got %d", m.Buffer())
	}
	m.Backspace()
	m.Backspace()
	m.Backspace()
	if m.Buffer() != 0 {
		t.Errorf("Expected empty buffer, got %d", m.Buffer())
	}

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		if _, err := m.Submit(code); !errors.Is(err, ErrInvalidPIN) {
			t.Errorf("Submit(%q): expected ErrInvalidPIN, got %v", code, err)
		}
	}
	if m.State() != Unprovisioned {
		t.Errorf("Invalid codes must not provision, got %v", m.State())
	}
}

func TestPressWhileUnlocked(t *testing.T) {
	m := provisioned(t, NewMemoryStore())
	if _, err := m.Press(1); !errors.Is(err, ErrNotLocked) {
		t.Errorf("Expected ErrNotLocked, got %v", err)
	}
}

func TestRestartStartsLocked(t *testing.T) {
	store := NewMemoryStore()
	provisioned(t, store)

	m := newMachine(t, store)
	if m.State() != Locked {
		t.Errorf("Expected locked on restart, got %v", m.State())
	}
}

func TestAutoLock(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		duration *LockDuration
		away     time.Duration
		want     State
	}{
		{"default 3s, 2s away", nil, 2000 * time.Millisecond, Unlocked},
		{"default 3s, 4s away", nil, 4000 * time.Millisecond, Locked},
		{"exactly 3s", nil, 3 * time.Second, Locked},
		{"5s, 4s away", ptr(LockAfter5s), 4 * time.Second, Unlocked},
		{"5s, 5s away", ptr(LockAfter5s), 5 * time.Second, Locked},
		{"never, one day away", ptr(LockNever), 24 * time.Hour, Unlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := provisioned(t, NewMemoryStore())
			if tt.duration != nil {
				if err := m.SetLockDuration(*tt.duration); err != nil {
					t.Fatalf("SetLockDuration failed: %v", err)
				}
			}

			if err := m.Background(base); err != nil {
				t.Fatalf("Background failed: %v", err)
			}
			got, err := m.Foreground(base.Add(tt.away))
			if err != nil {
				t.Fatalf("Foreground failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestForegroundWithoutBackground(t *testing.T) {
	m := provisioned(t, NewMemoryStore())
	got, err := m.Foreground(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Foreground failed: %v", err)
	}
	if got != Unlocked {
		t.Errorf("Expected no change, got %v", got)
	}
}

func TestForegroundConsumesTimestamp(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	m := provisioned(t, store)

	if err := m.Background(base); err != nil {
		t.Fatalf("Background failed: %v", err)
	}
	if _, err := m.Foreground(base.Add(time.Second)); err != nil {
		t.Fatalf("Foreground failed: %v", err)
	}
	if _, ok, _ := store.StartTime(); ok {
		t.Error("Expected timestamp to be consumed")
	}

	// A second foreground much later must not lock from the stale timestamp
	got, err := m.Foreground(base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Foreground failed: %v", err)
	}
	if got != Unlocked {
		t.Errorf("Expected unlocked, got %v", got)
	}
}

func TestTimestampSurvivesRestart(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	m := provisioned(t, store)

	if err := m.Background(base); err != nil {
		t.Fatalf("Background failed: %v", err)
	}

	restarted := newMachine(t, store)
	if _, err := restarted.Submit("123456"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	got, err := restarted.Foreground(base.Add(10 * time.Second))
	if err != nil {
		t.Fatalf("Foreground failed: %v", err)
	}
	if got != Locked {
		t.Errorf("Expected locked from persisted timestamp, got %v", got)
	}
}

func TestBiometric(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		bio     *fakeBiometric
		wantErr error
		want    State
	}{
		{"success", true, &fakeBiometric{result: BiometricResult{Success: true}}, nil, Unlocked},
		{"rejected", true, &fakeBiometric{result: BiometricResult{ErrorCode: "user_cancel"}}, ErrBiometricFailed, Locked},
		{"platform error", true, &fakeBiometric{err: errors.New("sensor busy")}, ErrBiometricFailed, Locked},
		{"disabled", false, &fakeBiometric{result: BiometricResult{Success: true}}, ErrBiometricUnavailable, Locked},
		{"no capability", true, nil, ErrBiometricUnavailable, Locked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			_ = store.SetBiometric(tt.enabled)

			var opts []Option
			if tt.bio != nil {
				opts = append(opts, WithBiometric(tt.bio))
			}
			m := provisioned(t, store, opts...)
			m.Lock()

			err := m.UnlockWithBiometric(context.Background())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if m.State() != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, m.State())
			}
		})
	}
}

func TestBiometricUnprovisioned(t *testing.T) {
	store := NewMemoryStore()
	_ = store.SetBiometric(true)
	bio := &fakeBiometric{result: BiometricResult{Success: true}}
	m := newMachine(t, store, WithBiometric(bio))

	if err := m.UnlockWithBiometric(context.Background()); !errors.Is(err, ErrBiometricUnavailable) {
		t.Errorf("Expected ErrBiometricUnavailable, got %v", err)
	}
	if bio.calls != 0 {
		t.Errorf("Prompt must not be shown before a pin exists")
	}
}

func TestChangePIN(t *testing.T) {
	m := provisioned(t, NewMemoryStore())

	if err := m.ChangePIN("000000", "654321"); !errors.Is(err, ErrWrongPIN) {
		t.Fatalf("Expected ErrWrongPIN, got %v", err)
	}
	if err := m.ChangePIN("123456", "65432"); !errors.Is(err, ErrInvalidPIN) {
		t.Fatalf("Expected ErrInvalidPIN, got %v", err)
	}
	if err := m.ChangePIN("123456", "654321"); err != nil {
		t.Fatalf("ChangePIN failed: %v", err)
	}

	m.Lock()
	if out, _ := m.Submit("123456"); out != OutcomeMismatch {
		t.Errorf("Old pin should no longer work, got %v", out)
	}
	if out, _ := m.Submit("654321"); out != OutcomeUnlocked {
		t.Errorf("New pin should unlock, got %v", out)
	}
}

func TestChangePINUnprovisioned(t *testing.T) {
	m := newMachine(t, NewMemoryStore())
	if err := m.ChangePIN("123456", "654321"); !errors.Is(err, ErrNotProvisioned) {
		t.Errorf("Expected ErrNotProvisioned, got %v", err)
	}
}

func ptr(d LockDuration) *LockDuration { return &d }
