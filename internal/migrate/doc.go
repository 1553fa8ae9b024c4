// Package migrate coordinates a full rewrite run: validate inputs, collect
// track references, resolve filenames against the new root with a worker
// pool, then either report (dry-run) or back up and rewrite the document.
// Workers never touch the document; all mutation happens on the
// coordinating goroutine, in document order.
package migrate
