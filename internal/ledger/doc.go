// Package ledger persists run history: one row per pipeline invocation plus
// per-file outcomes, stored in SQLite under the state directory.
package ledger
