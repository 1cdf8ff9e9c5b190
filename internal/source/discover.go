package source

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"
	"github.com/samber/oops"
)

const (
	sourcePattern  = "**/*.{csv,md,markdown}"
	maxSuggestions = 3
)

func defaultExcludes() []string {
	return []string{"**/.git/**", "**/node_modules/**"}
}

// Discover lists the CSV and Markdown files below root as slash separated
// paths relative to root, shallowest first.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, oops.
			Code("SOURCE_NOT_FOUND").
			With("path", root).
			Hint("Pass an existing directory").
			Errorf("directory %q does not exist", root)
	}

	matches, err := doublestar.Glob(os.DirFS(root), sourcePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, oops.
			Code("SOURCE_READ_ERROR").
			With("path", root).
			Wrapf(err, "discovering sources")
	}

	files := make([]string, 0, len(matches))
	for _, match := range matches {
		if isExcluded(match) {
			continue
		}
		files = append(files, match)
	}

	slices.SortFunc(files, compareDepth)
	return files, nil
}

func isExcluded(candidate string) bool {
	for _, pattern := range defaultExcludes() {
		if matched, _ := doublestar.PathMatch(pattern, candidate); matched {
			return true
		}
	}

	return false
}

func compareDepth(a string, b string) int {
	depthA := strings.Count(a, "/")
	depthB := strings.Count(b, "/")
	if depthA != depthB {
		return depthA - depthB
	}

	return strings.Compare(a, b)
}

// Resolve turns a user supplied source into a loadable location. URLs and
// existing paths are returned unchanged; a bare file name is searched for
// below root and the shallowest match wins.
func Resolve(root string, name string) (string, error) {
	if IsRemote(name) {
		return name, nil
	}

	if _, err := os.Stat(name); err == nil {
		return name, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", oops.
			Code("SOURCE_READ_ERROR").
			With("path", name).
			Wrapf(err, "checking source %q", name)
	}

	files, err := Discover(root)
	if err != nil {
		return "", err
	}

	if !strings.ContainsAny(name, `/\`) {
		for _, file := range files {
			if path.Base(file) == name {
				return filepath.Join(root, filepath.FromSlash(file)), nil
			}
		}
	}

	notFound := oops.
		Code("SOURCE_NOT_FOUND").
		With("name", name).
		With("root", root)

	if suggestions := Rank(path.Base(filepath.ToSlash(name)), files); len(suggestions) > 0 {
		if len(suggestions) > maxSuggestions {
			suggestions = suggestions[:maxSuggestions]
		}
		notFound = notFound.Hint("Did you mean: " + strings.Join(suggestions, ", "))
	} else {
		notFound = notFound.Hint("Run 'eqrender sources' to see the files available here")
	}

	return "", notFound.Errorf("source %q not found", name)
}

// Rank orders candidates by fuzzy match quality against query and drops
// those that do not match. An empty query returns candidates unchanged.
func Rank(query string, candidates []string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return candidates
	}

	matches := fuzzy.Find(query, candidates)
	ranked := make([]string, 0, len(matches))
	for _, match := range matches {
		ranked = append(ranked, match.Str)
	}

	return ranked
}
