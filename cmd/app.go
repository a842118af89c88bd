package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/access"
	"github.com/illarion/pinvault/internal/config"
	"github.com/illarion/pinvault/internal/crypto"
	"github.com/illarion/pinvault/internal/keyring"
	"github.com/illarion/pinvault/internal/lifecycle"
	"github.com/illarion/pinvault/internal/logging"
	"github.com/illarion/pinvault/internal/metrics"
	"github.com/illarion/pinvault/internal/storage"
	"github.com/illarion/pinvault/internal/vault"
)

// maxPINAttempts bounds the prompt loop of a single command
const maxPINAttempts = 3

// App wires the components for one CLI invocation
type App struct {
	Config    config.Config
	Log       *zap.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Store     *storage.Storage
	Access    *access.Machine
	Vault     *vault.Manager
	Lifecycle *lifecycle.Monitor
	VaultID   string
}

// OpenApp loads configuration and opens the settings store and vault.
// The config file can be set with PINVAULT_CONFIG.
func OpenApp() (*App, error) {
	cfg, err := config.Load(os.Getenv("PINVAULT_CONFIG"))
	if err != nil {
		return nil, err
	}

	log := logging.NewOrNop(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		OutputPath: "stderr",
	})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	if err := os.MkdirAll(filepath.Dir(cfg.StateFile), 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	store, err := storage.Open(cfg.StateFile)
	if err != nil {
		return nil, err
	}

	vaultID, err := store.GetOrCreateVaultID()
	if err != nil {
		store.Close()
		return nil, err
	}

	auth := &keyring.Authenticator{VaultID: vaultID}
	machine, err := access.New(store,
		access.WithLogger(log.Named("access")),
		access.WithMetrics(m),
		access.WithBiometric(auth),
		access.WithFeedback(func(access.Feedback) {
			fmt.Fprint(os.Stderr, "\a")
		}),
	)
	if err != nil {
		store.Close()
		return nil, err
	}
	auth.Verify = machine.VerifyPIN

	manager, err := vault.New(cfg.Root,
		vault.WithLogger(log.Named("vault")),
		vault.WithMetrics(m),
		vault.WithExportDir(cfg.ExportDir),
	)
	if err != nil {
		store.Close()
		return nil, err
	}
	if err := manager.EnsureRoot(); err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		Config:    cfg,
		Log:       log,
		Registry:  reg,
		Metrics:   m,
		Store:     store,
		Access:    machine,
		Vault:     manager,
		Lifecycle: lifecycle.NewMonitor(machine, lifecycle.WithLogger(log.Named("lifecycle"))),
		VaultID:   vaultID,
	}, nil
}

// MustOpenApp is OpenApp that exits on error
func MustOpenApp() *App {
	a, err := OpenApp()
	if err != nil {
		HandleError(err)
	}
	return a
}

// Close records that the app left the foreground and releases resources
func (a *App) Close() {
	if err := a.Lifecycle.Handle(lifecycle.Event{State: lifecycle.Background, At: time.Now()}); err != nil {
		a.Log.Warn("failed to record background time", zap.Error(err))
	}

	if a.Config.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(a.Config.MetricsFile, a.Registry); err != nil {
			a.Log.Warn("failed to write metrics", zap.String("path", a.Config.MetricsFile), zap.Error(err))
		}
	}

	a.Vault.Close()
	a.Store.Close()
	_ = a.Log.Sync()
}

// RequireUnlocked unlocks the vault if needed: biometric stand-in first,
// then the configured PIN, then an interactive prompt. A vault without a
// PIN is provisioned on the way.
func (a *App) RequireUnlocked(ctx context.Context) error {
	if a.Access.State() == access.Unlocked {
		return nil
	}

	if a.Access.State() == access.Locked {
		err := a.Access.UnlockWithBiometric(ctx)
		if err == nil {
			return nil
		}
		a.Log.Debug("biometric unlock skipped", zap.Error(err))
	}

	if a.Config.PIN != "" {
		return a.unlockWithPIN(a.Config.PIN)
	}

	if a.Access.State() == access.Unprovisioned {
		fmt.Printf("No PIN set. Choose a %d-digit PIN.\n", access.CodeLength)
	}

	prompt := "Enter PIN: "
	for attempts := 0; attempts < maxPINAttempts; {
		pin, err := ReadPIN(prompt)
		if err != nil {
			return err
		}
		out, err := a.Access.Submit(string(pin))
		crypto.ClearBytes(pin)

		if errors.Is(err, access.ErrInvalidPIN) {
			fmt.Fprintf(os.Stderr, "PIN must be exactly %d digits\n", access.CodeLength)
			attempts++
			continue
		}
		if err != nil {
			return err
		}

		switch out {
		case access.OutcomeUnlocked:
			return nil
		case access.OutcomeProvisioned:
			prompt = "Re-enter PIN: "
		case access.OutcomeMismatch:
			fmt.Fprintln(os.Stderr, "Wrong PIN")
			prompt = "Enter PIN: "
			attempts++
		}
	}
	return access.ErrWrongPIN
}

func (a *App) unlockWithPIN(pin string) error {
	out, err := a.Access.Submit(pin)
	if err != nil {
		return err
	}
	if out == access.OutcomeProvisioned {
		out, err = a.Access.Submit(pin)
		if err != nil {
			return err
		}
	}
	if out != access.OutcomeUnlocked {
		return access.ErrWrongPIN
	}
	return nil
}

// withUnlockedApp opens the app, unlocks it and runs fn
func withUnlockedApp(ctx context.Context, fn func(a *App) error) {
	a := MustOpenApp()
	defer a.Close()

	if err := a.RequireUnlocked(ctx); err != nil {
		a.Close()
		HandleError(err)
	}
	if err := fn(a); err != nil {
		a.Close()
		HandleError(err)
	}
}
