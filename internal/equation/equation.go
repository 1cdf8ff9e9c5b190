// Package equation defines the unit of work rendered by eqrender.
package equation

import (
	"strconv"
	"strings"
)

// FallbackName replaces names that are blank or sanitize to nothing.
const FallbackName = "default_equation"

// Equation is a single math-mode expression with its output name.
// Values are immutable once built with New.
type Equation struct {
	active bool
	name   string
	body   string
}

// New builds an Equation, sanitizing rawName into a filesystem-safe name.
// The body is stored exactly as given.
func New(active bool, rawName string, body string) Equation {
	return Equation{
		active: active,
		name:   SanitizeName(rawName),
		body:   body,
	}
}

func (e Equation) Active() bool { return e.active }

func (e Equation) Name() string { return e.name }

func (e Equation) Body() string { return e.body }

// SanitizeName replaces every character outside [A-Za-z0-9_.] with an
// underscore. A name with no allowed character at all yields FallbackName.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	kept := false
	for _, r := range name {
		if isNameRune(r) {
			b.WriteRune(r)
			kept = true
		} else {
			b.WriteByte('_')
		}
	}

	if !kept {
		return FallbackName
	}

	return b.String()
}

func isNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '.'
}

// Namer hands out unique names within one parse pass. The first use of a
// base name returns it unchanged; later uses append _1, _2, and so on.
// Counters are keyed on the raw base name, before sanitization. When two
// different raw names sanitize to the same result, the later one takes the
// next free suffix so no two names in a pass are equal.
type Namer struct {
	seen map[string]int
	used map[string]bool
}

func NewNamer() *Namer {
	return &Namer{seen: map[string]int{}, used: map[string]bool{}}
}

// Next returns the sanitized name to use for base. A blank base maps to
// FallbackName.
func (n *Namer) Next(base string) string {
	if strings.TrimSpace(base) == "" {
		base = FallbackName
	}

	count := n.seen[base]
	n.seen[base] = count + 1

	sanitized := SanitizeName(base)
	name := sanitized
	if count > 0 {
		name = sanitized + "_" + strconv.Itoa(count)
	}

	for suffix := max(count, 1); n.used[name]; suffix++ {
		name = sanitized + "_" + strconv.Itoa(suffix)
	}

	n.used[name] = true
	return name
}

// Filter returns the equations whose active flag matches active.
func Filter(equations []Equation, active bool) []Equation {
	filtered := make([]Equation, 0, len(equations))
	for _, eq := range equations {
		if eq.active == active {
			filtered = append(filtered, eq)
		}
	}

	return filtered
}
