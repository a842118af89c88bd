// Package storage provides the BBolt-backed settings store for pinvault.
//
// Database structure uses two buckets:
//   - config: schema version, timestamps, vault id (internal bookkeeping)
//   - settings: the persisted application state, one scalar per key
//
// Settings keys keep the names the mobile app has always used so an exported
// state file stays recognizable: UserData, lockcode, biometric, darkheme,
// backup, lockDuration, startTime and FilePickUp.
//
// Scalars are encoded as: strings raw, bools as a single 0/1 byte, numbers as
// 8-byte big-endian signed integers, structured values as JSON.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
