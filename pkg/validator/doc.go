// Package validator checks normalized client, worker and task records.
//
// Validation runs in three passes:
//
//  1. Structural: the entity set is non-empty, the first row carries every
//     required column, and record IDs are unique.
//  2. Entity rules: integer fields are within their domain, list fields hold
//     well-typed elements, and AttributesJSON holds JSON.
//  3. Consistency: requested tasks exist, required skills are held by some
//     worker, enough qualified workers exist for each task's MaxConcurrent,
//     and workers have at least MaxLoadPerPhase slots.
//
// The first two passes are independent per entity set and may run in
// parallel. The consistency pass needs all three sets.
//
// Findings are returned as diagnostics, never as Go errors. The only error
// condition is calling the consistency pass with a missing set.
//
// # Usage
//
//	v := validator.NewValidator()
//	diags, err := v.ValidateEntity(dataset.Clients, dataset.Records(clients))
//
// Extra cross-entity checks implement Check and are passed to NewValidator.
package validator
