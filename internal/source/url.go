package source

import (
	"context"
	"io"
	"net/http"
	neturl "net/url"
	"path"

	"github.com/samber/oops"
)

func (l *Loader) fetch(ctx context.Context, rawURL string) (*Document, error) {
	response, err := l.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("url", rawURL).
			Wrapf(err, "downloading source")
	}

	if response.StatusCode() < http.StatusOK || response.StatusCode() >= http.StatusMultipleChoices {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("url", rawURL).
			With("status", response.StatusCode()).
			Errorf("source returned non-success status %d", response.StatusCode())
	}

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("url", rawURL).
			Wrapf(err, "reading response body")
	}

	return &Document{
		Location: rawURL,
		Name:     filenameFromURL(rawURL),
		Content:  content,
	}, nil
}

// filenameFromURL returns the last path element of rawURL, or an empty
// string when the URL has no usable file name.
func filenameFromURL(rawURL string) string {
	parsed, err := neturl.Parse(rawURL)
	if err != nil {
		return ""
	}

	baseName := path.Base(parsed.Path)
	if baseName == "" || baseName == "." || baseName == "/" {
		return ""
	}

	return baseName
}
