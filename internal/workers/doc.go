// Package workers computes pool sizes for concurrent filesystem work.
package workers
