// Package graisseprompt is the composition root for the graisse application.
//
// It connects the reconciliation logic (Domain Layer) with the SQLite
// persistence adapter, keeping the core agnostic of where fragments are
// actually stored.
//
// Philosophy:
//
// Graisse is version control for composed prompts. A prompt is an ordered
// list of slots; each slot's content lives in its own fragment file in the
// working directory. Committing reconciles the working directory against
// the store: unchanged content is reused, changed content becomes a new
// fragment version, and the resulting composition becomes the new current
// master. History is never rewritten; uncommit restores the previous
// master byte for byte.
//
// Features:
//
//   - Content-addressed fragments: identical bytes are stored exactly once.
//   - Dotted versions: "1" -> "2" on change, "1.1" when branching.
//   - Full and partial commits over the working directory.
//   - Reversible history via uncommit.
//   - Single-file SQLite store next to your prompt files.
//
// Usage:
//
//	ws, err := graisseprompt.Open(ctx, ".",
//		graisseprompt.WithLogger(logger),
//	)
//	if err != nil { ... }
//	defer ws.Close()
//
//	result, err := ws.Commit(ctx, graisse.CommitOptions{Message: "tighten intro"})
package graisseprompt
