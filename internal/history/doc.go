// Package history is a SQLite-backed ledger of the configurations the seed
// commands built and the stacks they deployed.
//
// Each row records one stage of one run: which model package went into which
// stage, the content hash of the extended configuration, and, for deployments,
// whether the stack was created or updated.
//
// # Ordering
//
// Rows carry a logical sequence number assigned at insert time. Listing orders
// by seq, never by timestamp, so clock skew between operators' machines cannot
// reorder the ledger.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait for locks up to 5 seconds
package history
