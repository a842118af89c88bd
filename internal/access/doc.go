// Package access gates the vault behind a 6-digit PIN.
//
// # States
//
// A Machine is Unprovisioned until the first complete PIN entry, which is
// hashed and stored as the lock code. From then on it moves between Locked
// and Unlocked:
//
//	Unprovisioned --first PIN--> Locked --PIN or biometric--> Unlocked
//	Unlocked --Lock or elapsed background time--> Locked
//
// # Auto-lock
//
// Background records the time the app left the foreground in the Store,
// so the timestamp survives process suspension and restarts. Foreground
// compares the elapsed time with the configured LockDuration and locks
// when it has been reached. LockNever disables auto-lock.
//
// All state is guarded by a single mutex; a Machine is safe for
// concurrent use.
package access
