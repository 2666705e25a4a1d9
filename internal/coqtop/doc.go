// Package coqtop locates a usable worker executable and assembles its arguments.
//
// Ownership boundary:
// - executable probing through `--version`
// - version gate against the single supported release
// - PATH discovery
// - the fixed IDE-slave argument set
package coqtop
