// Package runner turns a resolved extension action into the concrete
// process that executes it. Under the host profile the action runs as
// is; under the container profile it is wrapped into an engine `run`
// invocation with cache, binary-parity, and workspace mounts. The
// runner spawns exactly one child at a time, forwards its streams, and
// relays interrupts to the child's process group.
package runner
