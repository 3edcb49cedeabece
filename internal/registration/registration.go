package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/openews/report-server/internal/models"
	"github.com/openews/report-server/pkg/sloger"
)

var logger *slog.Logger

func init() {
	type Empty struct{}
	pkgParts := strings.Split(reflect.TypeOf(Empty{}).PkgPath(), "/")
	// add package name to app logger
	logger = sloger.With("pkg", pkgParts[len(pkgParts)-1])
}

// Registrar forwards cross-checked report ids downstream. Failures are
// warnings for the caller, never a reason to undo the committed status change.
type Registrar interface {
	Register(ctx context.Context, reportId int, action string) error
}

type registrationPayload struct {
	ReportId int    `json:"reportId"`
	Action   string `json:"action"`
}

// Client posts accepted and dismissed report ids to an external
// case-registration endpoint.
type Client struct {
	BaseUrl string
	Http    *http.Client
}

func NewClient(baseUrl string) *Client {
	return &Client{
		BaseUrl: baseUrl,
		Http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Register(ctx context.Context, reportId int, action string) error {
	b, err := json.Marshal(registrationPayload{ReportId: reportId, Action: action})
	if err != nil {
		return err
	}

	url := strings.TrimSuffix(c.BaseUrl, "/") + "/api/caseRegistrations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Http.Do(req)
	if err != nil {
		logger.Warn("case registration request failed", "reportId", reportId, "error", err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("case registration returned status %d for report %d", resp.StatusCode, reportId)
		logger.Warn("case registration rejected", "reportId", reportId, "status", resp.StatusCode)
		return err
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (rsp models.ServiceHealthResp) {
	rsp.Service = models.REGISTRATION
	rsp.Status = models.STATUS_UP
	rsp.HealthIssue = models.HEALTH_ISSUE_NONE

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(c.BaseUrl, "/")+"/health", nil)
	if err != nil {
		return rsp.BuildErrorResponse(err)
	}
	resp, err := c.Http.Do(req)
	if err != nil {
		return rsp.BuildErrorResponse(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return rsp.BuildErrorResponse(fmt.Errorf("registration endpoint status %d", resp.StatusCode))
	}
	return rsp
}

// Noop satisfies Registrar when no registration endpoint is configured.
type Noop struct{}

func (Noop) Register(_ context.Context, _ int, _ string) error {
	return nil
}
