// Package registry records training runs in a relational database: one row
// per run with its configuration summary, lifecycle status and final loss.
// The registry is the queryable complement to the artifact store, which holds
// the full per-run files.
package registry
