// Package git reads repository state through the git binary: the
// current branch, the HEAD commit, and remote URLs. It is strictly
// read-only.
package git
