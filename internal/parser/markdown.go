package parser

import (
	"regexp"
	"strings"

	"github.com/g5becks/eqrender/internal/equation"
)

// equationBlockRegex matches an optional %%yes%%/%%no%% marker, a $$...$$
// body captured non-greedily across lines, and an optional %%name%% marker.
var equationBlockRegex = regexp.MustCompile(
	`(?s)(%%(yes|no)?%%)?[\n\r]*\$\$[\n\r]*(.*?)\$\$[\n\r]*(%%(.*?)%%)?`,
)

const (
	groupActive = 2
	groupBody   = 3
	groupName   = 5
)

// MarkdownParser extracts $$ blocks annotated with %% markers.
type MarkdownParser struct{}

func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

func (p *MarkdownParser) CanParse(path string) bool {
	return DetectFileType(path) == FormatMarkdown
}

// Parse never fails; unterminated or malformed blocks simply do not match.
func (p *MarkdownParser) Parse(_ string, content []byte) ([]equation.Equation, error) {
	return ParseMarkdown(string(StripBOM(content))), nil
}

// ParseMarkdown returns the equations found in text in document order.
func ParseMarkdown(text string) []equation.Equation {
	namer := equation.NewNamer()
	equations := []equation.Equation{}

	for _, loc := range equationBlockRegex.FindAllStringSubmatchIndex(text, -1) {
		active := true
		if value, ok := submatch(text, loc, groupActive); ok {
			active = value == activeMarker
		}

		body, _ := submatch(text, loc, groupBody)

		baseName := equation.FallbackName
		if value, ok := submatch(text, loc, groupName); ok {
			baseName = value
		}

		equations = append(equations, equation.New(active, namer.Next(baseName), strings.TrimSpace(body)))
	}

	return equations
}

// submatch reports the text of group n and whether the group took part in
// the match at all.
func submatch(text string, loc []int, n int) (string, bool) {
	start, end := loc[2*n], loc[2*n+1]
	if start < 0 {
		return "", false
	}

	return text[start:end], true
}
