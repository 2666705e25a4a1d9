// Package tools provides host command helpers shared by the worker discovery code.
//
// Ownership boundary:
// - one-shot command execution with captured output
package tools
