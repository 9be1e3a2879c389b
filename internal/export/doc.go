// Package export resolves where every fluxforge operation writes its output.
//
// Outputs are grouped as <base>/<root>/<Category>/[<YYYY-MM-DD>/]. The
// category set is closed; each category owns exactly one directory name. The
// resolver recomputes the location on every call and creates missing
// directories idempotently, so engines can call it unconditionally before
// writing.
package export
