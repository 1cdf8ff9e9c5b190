package parser

import (
	"bytes"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/gomarkdown/markdown/ast"
	mdparser "github.com/gomarkdown/markdown/parser"
)

type frontmatter struct {
	Title string `yaml:"title"`
}

// DocumentTitle returns the frontmatter title of a Markdown document, or the
// text of its first level-1 heading, or "" when neither exists.
func DocumentTitle(content []byte) string {
	content = StripBOM(content)
	body, title := stripFrontmatter(content)
	if title != "" {
		return title
	}

	doc := mdparser.NewWithExtensions(mdparser.CommonExtensions).Parse(body)

	var heading string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}

		if h, ok := node.(*ast.Heading); ok && h.Level == 1 {
			if text := extractText(h); text != "" {
				heading = text
				return ast.Terminate
			}
		}

		return ast.GoToNext
	})

	return heading
}

func extractText(node ast.Node) string {
	var buf strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if entering {
			if text, ok := n.(*ast.Text); ok {
				buf.Write(text.Literal)
			}
		}
		return ast.GoToNext
	})

	return strings.Join(strings.Fields(buf.String()), " ")
}

// stripFrontmatter removes a leading --- delimited YAML block and returns
// the remaining body with the title declared in it. Frontmatter that is not
// valid YAML contributes no title.
func stripFrontmatter(content []byte) ([]byte, string) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return content, ""
	}

	rest := normalized[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return content, ""
	}

	body := rest[end+len("\n---\n"):]

	var meta frontmatter
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return body, ""
	}

	return body, strings.TrimSpace(meta.Title)
}
