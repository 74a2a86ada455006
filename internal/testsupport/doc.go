// Package testsupport holds shared helpers for package tests: temp-dir
// configs, store fixtures, and synthetic feature streams.
package testsupport
