package keystore

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/openews/report-server/internal/models"
)

// FileStore serves the authorized key list from the local filesystem, mapping
// the container segment to a folder under Root. Used for local development
// and tests.
type FileStore struct {
	Root string
}

func (s *FileStore) Read(_ context.Context, blobPath string) (string, error) {
	containerName, blobName := SplitPath(blobPath)

	b, err := os.ReadFile(filepath.Join(s.Root, containerName, blobName))
	if err != nil {
		return "", errors.Join(ErrStoreRead, err)
	}
	return string(b), nil
}

func (s *FileStore) Health(_ context.Context) (rsp models.ServiceHealthResp) {
	rsp.Service = models.KEY_STORE
	rsp.Status = models.STATUS_UP
	rsp.HealthIssue = models.HEALTH_ISSUE_NONE

	if _, err := os.Stat(s.Root); err != nil {
		return rsp.BuildErrorResponse(err)
	}
	return rsp
}
