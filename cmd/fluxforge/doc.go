// Package main hosts the fluxforge CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the conversion operations (archive
// extraction and creation, video inspection, GIF estimation and conversion)
// plus configuration scaffolding, a status report and the operation history.
// Configuration is bootstrapped once per invocation; each operation then runs
// through internal/ops, which reloads configuration and journals the outcome.
//
// Keep this package lean: add behaviour to the internal packages first, then
// surface it through commands or flags here.
package main
