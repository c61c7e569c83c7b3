// Package repair runs the image passes over a loaded world store.
//
// Each pass reads the store's current references, changes files on disk when
// it has to (renames and transcodes), rewrites the affected records through
// Reference.Rewrite and queues replaced files for trash. Pipeline.Run applies
// the passes in a fixed order:
//
//	broken → extensions → duplicates → normalize → duplicates → unused
//
// Passes never persist records or move queued files; the caller decides
// when to call Store.Persist and Store.CommitTrash.
package repair
