// Package preflight provides readiness checks for the external tools and
// filesystem locations fluxforge depends on.
//
// The CLI "fluxforge status" command renders RunAll's results. Each check is
// independent; optional locations (cloud sync folder, log directory) are only
// checked when configured.
package preflight
