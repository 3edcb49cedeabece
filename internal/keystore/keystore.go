package keystore

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/openews/report-server/pkg/sloger"
)

var logger *slog.Logger

func init() {
	type Empty struct{}
	pkgParts := strings.Split(reflect.TypeOf(Empty{}).PkgPath(), "/")
	// add package name to app logger
	logger = sloger.With("pkg", pkgParts[len(pkgParts)-1])
}

var (
	ErrPathNotConfigured = errors.New("authorized key list path is not configured")
	ErrStoreRead         = errors.New("failed to read authorized key list")
)

// Store reads the newline-delimited authorized key list from an object store.
// The blob path has the form "container/blob-name" and is split on the first
// slash. Reads are point-in-time snapshots; nothing is cached.
type Store interface {
	Read(ctx context.Context, blobPath string) (string, error)
}

// SplitPath splits "container/blob-name" on the first slash. A path without a
// slash yields an empty blob name.
func SplitPath(blobPath string) (string, string) {
	parts := strings.SplitN(blobPath, "/", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// AuthorizedKeys splits the key list blob on any line ending and discards
// blank entries.
func AuthorizedKeys(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	var keys []string
	for _, line := range strings.Split(normalized, "\n") {
		if line != "" {
			keys = append(keys, line)
		}
	}
	return keys
}

// VerifyApiKey reports whether apiKey appears verbatim in the authorized key
// list. Comparison is exact and case sensitive.
func VerifyApiKey(authorizedKeys string, apiKey string) bool {
	if strings.TrimSpace(authorizedKeys) == "" {
		logger.Error("the authorized API key list is empty")
		return false
	}

	if strings.TrimSpace(apiKey) == "" {
		logger.Warn("received a report with an empty API key")
		return false
	}

	for _, k := range AuthorizedKeys(authorizedKeys) {
		if k == apiKey {
			return true
		}
	}

	logger.Warn("received a report with an unauthorized API key")
	return false
}
