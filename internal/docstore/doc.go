// Package docstore provides the schemaless document store the workflows
// persist into.
//
// # Overview
//
// A Store exposes named collections of JSON-like documents keyed by string
// ids. The operations are deliberately narrow: Get, Set, Add (store
// generates the id), Update (top-level field merge), Delete, a single
// field-equals Query, and Watch for change subscription. The workflows and
// services consume only this interface; the concrete backend is chosen at
// wiring time.
//
// # Backends
//
//   - MemoryStore — in-process backend used by tests and offline tooling;
//     Watch fans out synchronously to subscribers.
//   - PostgresStore — documents table with a JSONB payload (pgx stdlib
//     driver, goose migrations); Watch is interval polling.
//
// Collections used by arthub: users, characters, shares.
package docstore
