// Package parser extracts equations from CSV tables and annotated Markdown.
//
// Both parsers are tolerant: rows or blocks that do not fit the expected
// shape are skipped rather than reported. Each call to Parse deduplicates
// names with its own equation.Namer, so parsers are safe to run in parallel.
package parser
