package event

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/openews/report-server/internal/models"
)

const TypeSeparator = "_"

type FilePublisher[T Identifiable] struct {
	Dir string
}

func (fp *FilePublisher[T]) Publish(_ context.Context, event T) error {
	err := os.MkdirAll(fp.Dir, 0750)
	if err != nil && !os.IsExist(err) {
		return err
	}

	filename := filepath.Join(fp.Dir, event.Identifier()+TypeSeparator+event.Type())
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	// write event to file.
	encoder := json.NewEncoder(f)
	err = encoder.Encode(event)
	if err != nil {
		return err
	}

	return nil
}

func (fp *FilePublisher[T]) Close() error {
	return nil
}

func (fp *FilePublisher[T]) Health(_ context.Context) (rsp models.ServiceHealthResp) {
	rsp.Service = "File Report Publisher"
	rsp.Status = models.STATUS_UP
	rsp.HealthIssue = models.HEALTH_ISSUE_NONE
	return rsp
}
