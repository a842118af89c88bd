// Package assets pages through external media sources.
//
// A Source wraps a Provider and keeps one cursor for the active filter.
// LoadNext drops a request while another fetch for the same filter is in
// flight instead of queueing it, and results that arrive after the filter
// has changed are discarded.
//
// DirProvider is a Provider over a directory tree, used to import files
// from a local folder.
package assets
