// Package scanner walks the new root once, in parallel, and records every
// file it finds into the catalog. Symbolic links are never followed, so a
// link cycle cannot hang the walk.
package scanner
