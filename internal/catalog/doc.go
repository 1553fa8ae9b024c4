// Package catalog is the SQLite-backed inventory of files found under the
// new root. The resolver queries it by base name; duplicate names resolve
// to the lexically smallest path so results do not depend on scan order.
package catalog
