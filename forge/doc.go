// Package forge talks to the hosting service behind the repository's
// origin remote. It parses remote URLs, picks the matching API client,
// reads the latest CI run for a branch, and manages the draft release
// that marks a release candidate.
package forge
