// Package world owns the parsed records of one Foundry world folder and the
// image references found inside them.
//
// A Store loads every .json file (one document) and .db file (one document
// per line) under the world root, walks each document with jsontree, and
// creates one Reference per image path it finds, either a bare path string or
// an <img src> inside an HTML fragment. References never hold a copy of the
// record content: Content re-reads the owning document at the reference's
// address, and Rewrite performs the find-and-replace, writes the fragment back
// and re-resolves the reference in one step.
//
// The store also keeps the trash queue, writes the records back with
// one-generation backups, and moves queued files into the world's _trash
// folder. Reference paths are relative to the user data folder and slash
// separated, e.g. "worlds/porvenir/art/banner.webp".
package world
