// Package vault manages the folders and files under the vault root.
//
// Every path that names something inside the vault is resolved through
// security.PathValidator, so no operation can reach outside the root.
// Listings are read from disk on every call; nothing is cached between a
// mutation and the next listing.
//
// # Moves
//
// MoveBatch moves files one at a time in order. Each file either ends up
// at its destination or stays at its source: a same-device move is a
// rename, and a cross-device move copies into a temporary file next to the
// destination, renames it into place and only then removes the source.
// The first failure stops the batch; files already moved stay moved and
// the result reports how many completed.
//
// A name that is already taken in the destination gets a numeric suffix,
// "photo.jpg" becoming "photo (1).jpg". Batches into the same destination
// run one at a time.
package vault
