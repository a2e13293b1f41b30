// Package engine runs the validation pipeline over the three entity sets.
//
// A run normalizes each supplied set, checks it structurally and against
// its field rules, then, once clients, workers and tasks are all present,
// checks references and capacity across the sets. The per-entity passes are
// independent and run concurrently; the cross-entity pass waits for all of
// them.
//
// # Usage
//
//	e := engine.New(engine.DefaultOptions())
//	report, err := e.Validate(ctx, engine.Input{Clients: c, Workers: w, Tasks: t})
//	if err != nil {
//		return err
//	}
//	if !report.CanProceed {
//		// show report.Bucket(dataset.Clients) ...
//	}
//
// A Session keeps the raw rows of one ingestion so that cell edits and
// auto-fixes re-validate only the affected set before the cross-entity pass
// runs again.
package engine
