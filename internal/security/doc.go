// Package security confines vault file operations to the vault root.
//
// Every path the vault manager touches inside the vault is resolved through a
// PathValidator backed by os.Root, so a crafted folder name or a symlink
// cannot reach outside the vault directory.
package security
