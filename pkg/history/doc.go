// Package history records validation runs so they can be listed, inspected
// and pruned later.
//
// Two backends implement Storage: MemoryStorage for tests and short-lived
// servers, and SQLiteStorage for durable history. The SQLite backend works
// with either the pure-Go driver ("sqlite", modernc.org/sqlite) or the cgo
// driver ("sqlite3", mattn/go-sqlite3).
//
//	store, err := history.Open(cfg.History)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	run := history.NewRun(report, sources, started)
//	if err := store.Save(ctx, run); err != nil {
//		return err
//	}
//
// A Pruner enforces RetentionDays and MaxRuns. Scheduler runs it on the
// cron schedule from the configuration.
package history
