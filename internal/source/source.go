package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"resty.dev/v3"
)

// Document is the raw content of an equation source.
type Document struct {
	// Location is the path or URL the document was loaded from.
	Location string
	// Name is the file name used to detect the source format.
	Name    string
	Content []byte
}

// Loader reads equation sources from disk or over HTTP.
type Loader struct {
	client *resty.Client
}

func NewLoader() *Loader {
	return &Loader{client: resty.New()}
}

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads location, fetching it when it is a URL.
func (l *Loader) Load(ctx context.Context, location string) (*Document, error) {
	if strings.TrimSpace(location) == "" {
		return nil, oops.
			Code("INVALID_ARGS").
			Hint("Pass a CSV or Markdown file").
			Errorf("source location cannot be empty")
	}

	if IsRemote(location) {
		return l.fetch(ctx, location)
	}

	content, err := os.ReadFile(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, oops.
				Code("SOURCE_NOT_FOUND").
				With("path", location).
				Hint("Run 'eqrender sources' to see the files available here").
				Errorf("source file %q does not exist", location)
		}

		return nil, oops.
			Code("SOURCE_READ_ERROR").
			With("path", location).
			Wrapf(err, "reading source file %q", location)
	}

	return &Document{
		Location: location,
		Name:     filepath.Base(location),
		Content:  content,
	}, nil
}
