// Package library loads, mutates, and serializes Rekordbox XML exports.
// Only the Location attribute of tracks is ever rewritten; every other
// attribute and child element is carried through verbatim.
package library
