package evidence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Mirror is a remote copy of the run's evidence, such as an S3 bucket.
type Mirror interface {
	PutObject(ctx context.Context, key string, content []byte, contentType string) error
}

// Published lists the object keys written by Publish.
type Published struct {
	Keys []string
}

// Publish uploads every saved capture and the report files to mirror under prefix. Capture
// keys keep the report's relative layout (<prefix>/<captureLinkDir>/<file>) so the mirrored
// report's links still resolve. Every upload is attempted; failures are joined.
func Publish(
	ctx context.Context,
	mirror Mirror,
	store *Store,
	captureLinkDir string,
	prefix string,
	reportFiles ...string,
) (Published, error) {
	var out Published
	var failures []error

	put := func(key, file, contentType string) {
		data, err := os.ReadFile(file)
		if err != nil {
			failures = append(failures, fmt.Errorf("read %s: %w", file, err))
			return
		}
		if err := mirror.PutObject(ctx, key, data, contentType); err != nil {
			failures = append(failures, err)
			return
		}
		out.Keys = append(out.Keys, key)
	}

	prefix = strings.Trim(prefix, "/")
	for _, ref := range store.Captures() {
		put(path.Join(prefix, captureLinkDir, ref.File), ref.Path, "image/png")
	}
	for _, file := range reportFiles {
		if file == "" {
			continue
		}
		put(path.Join(prefix, filepath.Base(file)), file, contentTypeFor(file))
	}
	return out, errors.Join(failures...)
}

func contentTypeFor(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}
