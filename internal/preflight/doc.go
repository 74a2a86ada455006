// Package preflight provides readiness checks for the filesystem paths and
// the feature store that shotscan depends on.
//
// `shotscan config validate` runs RunAll after loading the configuration and
// reports every result; any failed check makes the command fail.
package preflight
