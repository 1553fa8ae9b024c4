// Package resolver locates files by base name under the new root.
// A direct stat of root/filename is tried first; the first miss triggers a
// one-time parallel scan of the whole tree into the catalog, after which
// every lookup is an index query.
package resolver
