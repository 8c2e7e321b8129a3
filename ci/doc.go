// Package ci renders the GitHub Actions workflow that mirrors the
// configured pr target profile, and detects drift between the on-disk
// workflow and the one the current config would generate.
package ci
