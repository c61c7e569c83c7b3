// Package main hosts the worldmanager CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration (file, environment,
// then flags), builds the logger, and hands off to internal/worldrun for the
// actual work. Commands only parse flags and render results as tables, JSON
// or YAML.
package main
