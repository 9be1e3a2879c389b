// Package deps checks that the external executables fluxforge drives can be
// found, reporting each one's resolved location for the status command.
package deps
