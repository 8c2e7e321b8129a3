// Package runtime resolves where a planned command executes. It chooses
// between the host process and a containerized proxy, probes container
// engines for availability, and derives the toolchain fingerprint that
// keys cache directories and container image tags.
package runtime
