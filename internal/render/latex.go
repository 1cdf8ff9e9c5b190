package render

import (
	"strings"
	"text/template"

	"github.com/samber/oops"
)

const (
	DefaultColor = "#000000"

	minBoxHeight = "12mm"
	minBoxDepth  = "5mm"
	hexColorLen  = 6
)

// Every equation box is padded to the same minimum height and depth.
//
//nolint:gochecknoglobals // Parsed once at init.
var latexTemplate = template.Must(template.New("equation").Delims("[[", "]]").Parse(
	`\documentclass[border=1pt]{standalone}
\usepackage{amsmath}
\usepackage{xfrac}
\usepackage{gfsneohellenicot}
\usepackage{xcolor}
\definecolor{equationcolor}{HTML}{[[.Color]]}
\begin{document}
\setbox0\hbox{\Large \textcolor{equationcolor}{$ [[.Body]] $}}
\dimen0=[[.MinHeight]]
\ifdim\ht0<\dimen0
\ht0=\dimen0
\fi
\ifdim\dp0<[[.MinDepth]]
\dp0=[[.MinDepth]]
\fi
\box0
\end{document}
`))

type latexData struct {
	Color     string
	Body      string
	MinHeight string
	MinDepth  string
}

// GenerateLaTeX wraps body in a standalone document coloured with color.
func GenerateLaTeX(body string, color string) (string, error) {
	normalized, err := NormalizeColor(color)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := latexTemplate.Execute(&b, latexData{
		Color:     normalized,
		Body:      body,
		MinHeight: minBoxHeight,
		MinDepth:  minBoxDepth,
	}); err != nil {
		return "", oops.
			Code("TEMPLATE_ERROR").
			Wrapf(err, "rendering latex template")
	}

	return b.String(), nil
}

// NormalizeColor accepts RRGGBB with or without a leading # in any case and
// returns it upper-cased without the #.
func NormalizeColor(color string) (string, error) {
	code := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(code) != hexColorLen || !isHex(code) {
		return "", oops.
			Code("INVALID_COLOR").
			With("color", color).
			Hint("Use a 6 digit hex colour such as #1A2B3C").
			Errorf("invalid colour %q", color)
	}

	return strings.ToUpper(code), nil
}

func isHex(s string) bool {
	for _, r := range s {
		isDigit := r >= '0' && r <= '9'
		isLower := r >= 'a' && r <= 'f'
		isUpper := r >= 'A' && r <= 'F'
		if !isDigit && !isLower && !isUpper {
			return false
		}
	}

	return true
}
