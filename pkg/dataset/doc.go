// Package dataset defines the row and value model shared by every stage of
// the pipeline: the raw records produced by parsers, the canonical Client,
// Worker and Task rows produced by normalization, and the per-entity field
// schemas that drive validation.
package dataset
