package parser

import (
	"github.com/g5becks/eqrender/internal/equation"
	"github.com/samber/oops"
)

// Parser extracts an ordered batch of equations from file content.
type Parser interface {
	Parse(path string, content []byte) ([]equation.Equation, error)
	CanParse(path string) bool
}

const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatUnknown  = "unknown"
)

func All() []Parser {
	return []Parser{
		NewCSVParser(),
		NewMarkdownParser(),
	}
}

// ForPath picks the parser matching the file extension of path.
func ForPath(path string) (Parser, error) {
	for _, p := range All() {
		if p.CanParse(path) {
			return p, nil
		}
	}

	return nil, oops.
		Code("UNKNOWN_SOURCE_TYPE").
		With("path", path).
		Hint("Use a .csv, .md or .markdown file, or pass --source-format csv|markdown").
		Errorf("cannot detect source format for %q", path)
}

// ForFormat returns the parser registered for an explicit format name.
func ForFormat(format string) (Parser, error) {
	switch format {
	case FormatCSV:
		return NewCSVParser(), nil
	case FormatMarkdown, "md":
		return NewMarkdownParser(), nil
	default:
		return nil, oops.
			Code("UNKNOWN_SOURCE_TYPE").
			With("format", format).
			Hint("Supported formats: csv, markdown").
			Errorf("unknown source format %q", format)
	}
}
