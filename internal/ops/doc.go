// Package ops is the command surface of fluxforge: the five logical
// operations a front end invokes (extract, create, video info, GIF estimate,
// GIF conversion).
//
// Each call reads configuration afresh through a ConfigSource, stamps a
// request ID and operation name into the context (and therefore into every
// log line), delegates to the archive or video engines, and journals the
// outcome in the history store when enabled. Calls share no mutable state and
// may run concurrently.
package ops
