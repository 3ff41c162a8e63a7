// Package store persists the content pipeline state in SQLite.
//
// Three tables back the pipeline: content_items (collected videos and their
// lifecycle state), publications (one row per platform publish attempt,
// success or failure, plus the live metrics snapshot), and campaigns (named
// configuration bundles read by the scheduler).
//
// Every stage performs select-batch → per-item mutate → commit; no
// transaction spans more than one item. Lifecycle transitions are enforced
// with conditional UPDATEs so items never regress (processing_error →
// collected being the single, explicitly administrative, exception).
package store
