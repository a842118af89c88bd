// Package keyring wraps the OS keyring (Keychain, Secret Service,
// Windows Credential Manager) for pinvault.
//
// A PIN saved with SavePIN lets the CLI unlock without a prompt. The same
// entry backs Authenticator, the desktop stand-in for a biometric check.
package keyring
