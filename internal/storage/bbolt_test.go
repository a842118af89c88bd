package storage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) (*Storage, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "state.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	return db, dbPath
}

func TestOpenCreatesBuckets(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	keys, err := db.Keys()
	if err != nil {
		t.Fatalf("Failed to list keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Expected empty settings, got %v", keys)
	}

	if _, err := db.GetModified(); err != nil {
		t.Errorf("Expected modified timestamp: %v", err)
	}
}

func TestMissingKeysReportUnset(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	code, err := db.LockCode()
	if err != nil {
		t.Fatalf("LockCode failed: %v", err)
	}
	if code != "" {
		t.Errorf("Expected empty lock code, got %q", code)
	}

	if _, ok, err := db.LockDurationMs(); err != nil || ok {
		t.Errorf("Expected unset lock duration, got ok=%v err=%v", ok, err)
	}

	if _, ok, err := db.StartTime(); err != nil || ok {
		t.Errorf("Expected unset start time, got ok=%v err=%v", ok, err)
	}

	enabled, err := db.Biometric()
	if err != nil || enabled {
		t.Errorf("Expected biometric disabled, got %v err=%v", enabled, err)
	}
}

func TestTypedAccessors(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	if err := db.SetLockCode("hash-record"); err != nil {
		t.Fatalf("SetLockCode failed: %v", err)
	}
	if err := db.SetBiometric(true); err != nil {
		t.Fatalf("SetBiometric failed: %v", err)
	}
	if err := db.SetDarkTheme(true); err != nil {
		t.Fatalf("SetDarkTheme failed: %v", err)
	}
	if err := db.SetBackup(false); err != nil {
		t.Fatalf("SetBackup failed: %v", err)
	}
	if err := db.SetLockDurationMs(-1); err != nil {
		t.Fatalf("SetLockDurationMs failed: %v", err)
	}

	code, _ := db.LockCode()
	if code != "hash-record" {
		t.Errorf("LockCode mismatch: got %q", code)
	}
	if v, _ := db.Biometric(); !v {
		t.Error("Biometric should be enabled")
	}
	if v, _ := db.DarkTheme(); !v {
		t.Error("DarkTheme should be enabled")
	}
	if v, _ := db.Backup(); v {
		t.Error("Backup should be disabled")
	}
	ms, ok, err := db.LockDurationMs()
	if err != nil || !ok || ms != -1 {
		t.Errorf("LockDurationMs mismatch: got %d ok=%v err=%v", ms, ok, err)
	}
}

func TestStartTimeMillisecondPrecision(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	at := time.UnixMilli(1_700_000_123_456)
	if err := db.SetStartTime(at); err != nil {
		t.Fatalf("SetStartTime failed: %v", err)
	}

	got, ok, err := db.StartTime()
	if err != nil || !ok {
		t.Fatalf("StartTime failed: ok=%v err=%v", ok, err)
	}
	if !got.Equal(at) {
		t.Errorf("StartTime mismatch: got %v, want %v", got, at)
	}

	if err := db.ClearStartTime(); err != nil {
		t.Fatalf("ClearStartTime failed: %v", err)
	}
	if _, ok, _ := db.StartTime(); ok {
		t.Error("StartTime should be unset after clear")
	}
}

func TestFilePickUpAndUserData(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	picked := []string{"/sdcard/DCIM/a.jpg", "/sdcard/DCIM/b.mp4"}
	if err := db.SetFilePickUp(picked); err != nil {
		t.Fatalf("SetFilePickUp failed: %v", err)
	}
	got, err := db.FilePickUp()
	if err != nil {
		t.Fatalf("FilePickUp failed: %v", err)
	}
	if len(got) != 2 || got[0] != picked[0] || got[1] != picked[1] {
		t.Errorf("FilePickUp mismatch: got %v", got)
	}

	if err := db.SetUserData(json.RawMessage(`{"skip":true}`)); err != nil {
		t.Fatalf("SetUserData failed: %v", err)
	}
	if err := db.SetUserData(json.RawMessage(`{not json`)); !errors.Is(err, ErrWrongType) {
		t.Errorf("Expected ErrWrongType for invalid JSON, got %v", err)
	}
	data, err := db.UserData()
	if err != nil {
		t.Fatalf("UserData failed: %v", err)
	}
	if string(data) != `{"skip":true}` {
		t.Errorf("UserData mismatch: got %s", data)
	}
}

func TestWrongEncodingIsReported(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	if err := db.SetString(KeyLockDuration, "3sec"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}
	if _, _, err := db.LockDurationMs(); !errors.Is(err, ErrWrongType) {
		t.Errorf("Expected ErrWrongType, got %v", err)
	}
}

func TestVaultID(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()

	if _, err := db.GetVaultID(); err == nil {
		t.Fatal("Expected error before vault id is created")
	}

	id, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("GetOrCreateVaultID failed: %v", err)
	}
	again, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("GetOrCreateVaultID failed: %v", err)
	}
	if id != again {
		t.Errorf("Vault id changed: %s != %s", id, again)
	}
}

func TestPersistenceAndCompact(t *testing.T) {
	db, dbPath := openTemp(t)

	if err := db.SetLockCode("persisted"); err != nil {
		t.Fatalf("SetLockCode failed: %v", err)
	}
	if err := db.Compact(); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}
	if code, _ := db.LockCode(); code != "persisted" {
		t.Errorf("Lock code lost by compaction: %q", code)
	}
	db.Close()

	db2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db2.Close()

	if code, _ := db2.LockCode(); code != "persisted" {
		t.Errorf("Lock code not persisted: %q", code)
	}
}
