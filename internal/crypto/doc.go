// Package crypto provides PIN hashing for pinvault.
//
// PINs are never stored in clear. A PIN is stretched with PBKDF2-HMAC-SHA256:
//   - 32-byte random salt per PIN
//   - 210,000 iterations (OWASP minimum recommendation)
//   - 32-byte derived key
//
// The persisted record is "pbkdf2-sha256$<iterations>$<salt hex>$<key hex>".
// Verification uses a constant-time comparison.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
package crypto
