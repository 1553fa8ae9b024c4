// Package location encodes and decodes the file://localhost/ references
// Rekordbox stores in the Location attribute of each track.
package location
