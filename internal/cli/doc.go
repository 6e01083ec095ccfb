// Package cli implements the interactive arthub client: a small REPL
// over the character, media, share and avatar workflows.
package cli
