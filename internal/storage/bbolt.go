package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket   = []byte("config")   // schema version, timestamps, vault id
	SettingsBucket = []byte("settings") // persisted application state
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigVaultID  = []byte("vault_id")
)

// Settings keys
const (
	KeyUserData     = "UserData"
	KeyLockCode     = "lockcode"
	KeyBiometric    = "biometric"
	KeyDarkTheme    = "darkheme"
	KeyBackup       = "backup"
	KeyLockDuration = "lockDuration"
	KeyStartTime    = "startTime"
	KeyFilePickUp   = "FilePickUp"
)

const openTimeout = time.Second

var (
	ErrWrongType = errors.New("stored value has unexpected encoding")
)

// Storage provides BBolt-based storage for pinvault settings
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a settings database and ensures its buckets exist
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

func (s *Storage) initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, SettingsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}

		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// Get returns the raw value for a settings key, or nil if it is not set
func (s *Storage) Get(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		settings := tx.Bucket(SettingsBucket)
		if settings == nil {
			return fmt.Errorf("settings bucket not found")
		}
		if v := settings.Get([]byte(key)); v != nil {
			// Make a copy since the slice is only valid during the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, err
}

// Put stores the raw value for a settings key
func (s *Storage) Put(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(SettingsBucket).Put([]byte(key), value); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// Delete removes a settings key. Removing a missing key is not an error.
func (s *Storage) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(SettingsBucket).Delete([]byte(key)); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// Keys returns every settings key currently set
func (s *Storage) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(SettingsBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

func touchModified(tx *bolt.Tx) error {
	modified, _ := time.Now().MarshalBinary()
	return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
}

// GetString returns a string setting and whether it was set
func (s *Storage) GetString(key string) (string, bool, error) {
	data, err := s.Get(key)
	if err != nil || data == nil {
		return "", false, err
	}
	return string(data), true, nil
}

// SetString stores a string setting
func (s *Storage) SetString(key, value string) error {
	return s.Put(key, []byte(value))
}

// GetBool returns a bool setting and whether it was set
func (s *Storage) GetBool(key string) (bool, bool, error) {
	data, err := s.Get(key)
	if err != nil || data == nil {
		return false, false, err
	}
	if len(data) != 1 {
		return false, false, fmt.Errorf("%w: %s", ErrWrongType, key)
	}
	return data[0] == 1, true, nil
}

// SetBool stores a bool setting
func (s *Storage) SetBool(key string, value bool) error {
	b := []byte{0}
	if value {
		b[0] = 1
	}
	return s.Put(key, b)
}

// GetNumber returns a numeric setting and whether it was set
func (s *Storage) GetNumber(key string) (int64, bool, error) {
	data, err := s.Get(key)
	if err != nil || data == nil {
		return 0, false, err
	}
	if len(data) != 8 {
		return 0, false, fmt.Errorf("%w: %s", ErrWrongType, key)
	}
	return int64(binary.BigEndian.Uint64(data)), true, nil
}

// SetNumber stores a numeric setting
func (s *Storage) SetNumber(key string, value int64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(value))
	return s.Put(key, b)
}

// GetJSON decodes a JSON setting into v and reports whether it was set
func (s *Storage) GetJSON(key string, v any) (bool, error) {
	data, err := s.Get(key)
	if err != nil || data == nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v as a JSON setting
func (s *Storage) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Put(key, data)
}

// LockCode returns the stored PIN hash record, empty if no PIN is set
func (s *Storage) LockCode() (string, error) {
	code, _, err := s.GetString(KeyLockCode)
	return code, err
}

// SetLockCode stores the PIN hash record
func (s *Storage) SetLockCode(code string) error {
	return s.SetString(KeyLockCode, code)
}

// Biometric reports whether biometric unlock is enabled
func (s *Storage) Biometric() (bool, error) {
	v, _, err := s.GetBool(KeyBiometric)
	return v, err
}

// SetBiometric enables or disables biometric unlock
func (s *Storage) SetBiometric(enabled bool) error {
	return s.SetBool(KeyBiometric, enabled)
}

// DarkTheme reports whether the dark theme is enabled
func (s *Storage) DarkTheme() (bool, error) {
	v, _, err := s.GetBool(KeyDarkTheme)
	return v, err
}

// SetDarkTheme enables or disables the dark theme
func (s *Storage) SetDarkTheme(enabled bool) error {
	return s.SetBool(KeyDarkTheme, enabled)
}

// Backup reports whether backup is enabled
func (s *Storage) Backup() (bool, error) {
	v, _, err := s.GetBool(KeyBackup)
	return v, err
}

// SetBackup enables or disables backup
func (s *Storage) SetBackup(enabled bool) error {
	return s.SetBool(KeyBackup, enabled)
}

// LockDurationMs returns the stored lock duration in milliseconds
func (s *Storage) LockDurationMs() (int64, bool, error) {
	return s.GetNumber(KeyLockDuration)
}

// SetLockDurationMs stores the lock duration in milliseconds
func (s *Storage) SetLockDurationMs(ms int64) error {
	return s.SetNumber(KeyLockDuration, ms)
}

// StartTime returns the last time the app left the foreground
func (s *Storage) StartTime() (time.Time, bool, error) {
	ms, ok, err := s.GetNumber(KeyStartTime)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms), true, nil
}

// SetStartTime records the time the app left the foreground
func (s *Storage) SetStartTime(t time.Time) error {
	return s.SetNumber(KeyStartTime, t.UnixMilli())
}

// ClearStartTime removes the background timestamp
func (s *Storage) ClearStartTime() error {
	return s.Delete(KeyStartTime)
}

// FilePickUp returns source paths picked for import but not yet moved
func (s *Storage) FilePickUp() ([]string, error) {
	var paths []string
	if _, err := s.GetJSON(KeyFilePickUp, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

// SetFilePickUp stores picked source paths for a later move
func (s *Storage) SetFilePickUp(paths []string) error {
	return s.SetJSON(KeyFilePickUp, paths)
}

// ClearFilePickUp drops pending picked paths
func (s *Storage) ClearFilePickUp() error {
	return s.Delete(KeyFilePickUp)
}

// UserData returns the opaque user/session blob
func (s *Storage) UserData() (json.RawMessage, error) {
	data, err := s.Get(KeyUserData)
	if err != nil || data == nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// SetUserData stores the opaque user/session blob
func (s *Storage) SetUserData(data json.RawMessage) error {
	if !json.Valid(data) {
		return fmt.Errorf("%w: %s is not valid JSON", ErrWrongType, KeyUserData)
	}
	return s.Put(KeyUserData, data)
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// GetVaultID retrieves the vault ID from config bucket
func (s *Storage) GetVaultID() (string, error) {
	var vaultID string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(ConfigBucket).Get(ConfigVaultID)
		if data == nil {
			return fmt.Errorf("vault_id not found")
		}
		vaultID = string(data)
		return nil
	})
	return vaultID, err
}

// GetOrCreateVaultID retrieves existing vault ID or generates a new one
func (s *Storage) GetOrCreateVaultID() (string, error) {
	vaultID, err := s.GetVaultID()
	if err == nil {
		return vaultID, nil
	}

	vaultID = uuid.NewString()
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ConfigBucket).Put(ConfigVaultID, []byte(vaultID))
	})
	if err != nil {
		return "", err
	}

	return vaultID, nil
}

// Compact creates a compacted copy of the database, removing unused space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	s.db, err = bolt.Open(srcPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
