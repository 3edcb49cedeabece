package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openews/report-server/internal/localization"
	"github.com/openews/report-server/internal/models"
	"github.com/openews/report-server/internal/reportstore"
)

var testStringsYaml = []byte(`
strings:
  - key: reports.linkedToSupervisor
    translations:
      en: "linked to supervisor {0}"
  - key: reports.linkedToOrganization
    translations:
      en: "linked to organization {0}"
healthRisks:
  - id: 3
    names:
      en: "Fever and rash"
`)

func newTestService(t *testing.T) (*Service, *reportstore.MemoryStore) {
	t.Helper()
	vault, err := localization.Parse(testStringsYaml)
	if err != nil {
		t.Fatalf("expected no vault parse error, got %s", err.Error())
	}
	store := reportstore.NewMemoryStore()
	store.SetHealthRiskName("en", 3, "Fever and rash")
	store.SetOrganizationLinks([]models.OrganizationLink{
		{NationalSocietyId: 1, UserId: 100, OrganizationId: 42, OrganizationName: "Red Cross"},
		{NationalSocietyId: 1, UserId: 200, OrganizationId: 43, OrganizationName: "Red Crescent"},
	})
	return &Service{
		Store:       store,
		Vault:       vault,
		RowsPerPage: 2,
	}, store
}

func seedReport(t *testing.T, store *reportstore.MemoryStore, supervisorId int, receivedAt time.Time) models.Report {
	t.Helper()
	r := models.Report{
		NationalSocietyId: 1,
		ProjectId:         10,
		ReceivedAt:        receivedAt,
		Status:            models.ReportStatusNew,
		ReportType:        models.ReportTypeSingle,
		HealthRiskId:      3,
		HealthRiskType:    models.HealthRiskHuman,
		Sender:            "+220123456",
		Location: &models.Location{
			RegionName: "Upper River", DistrictName: "Basse", VillageName: "Fatoto", ZoneName: "East",
		},
		DataCollector: &models.DataCollector{
			Id: 7, DisplayName: "Musa Jallow", Type: models.DataCollectorHuman,
			SupervisorId: supervisorId, SupervisorName: "Anna Touray",
		},
	}
	if err := store.Save(context.Background(), &r); err != nil {
		t.Fatalf("expected no error seeding report, got %s", err.Error())
	}
	return r
}

func TestListNilViewerReturnsEmptyPage(t *testing.T) {
	svc, store := newTestService(t)
	seedReport(t, store, 100, time.Now().UTC())

	got, err := svc.List(context.Background(), nil, 1, reportstore.Filter{NationalSocietyId: 1})
	if err != nil {
		t.Fatalf("expected no error for unresolved viewer, got %s", err.Error())
	}
	if len(got.Data) != 0 || got.TotalRows != 0 {
		t.Errorf("expected empty page for unresolved viewer, got %d rows total %d", len(got.Data), got.TotalRows)
	}
}

func TestListSameOrganizationSeesFullDetail(t *testing.T) {
	svc, store := newTestService(t)
	seedReport(t, store, 100, time.Now().UTC())

	viewer := &Viewer{Role: models.RoleManager, OrganizationId: 42, OrganizationName: "Red Cross", Language: "en"}
	got, err := svc.List(context.Background(), viewer, 1, reportstore.Filter{NationalSocietyId: 1, ProjectId: 10})
	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}
	if len(got.Data) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got.Data))
	}
	row := got.Data[0]
	if row.IsAnonymized {
		t.Error("expected same-organization viewer to see full detail")
	}
	if row.DataCollectorDisplayName != "Musa Jallow" {
		t.Errorf("expected real display name, got %q", row.DataCollectorDisplayName)
	}
	if row.PhoneNumber != "+220123456" {
		t.Errorf("expected phone number kept, got %q", row.PhoneNumber)
	}
	if row.HealthRiskName == nil || *row.HealthRiskName != "Fever and rash" {
		t.Errorf("expected localized health risk name, got %v", row.HealthRiskName)
	}
}

func TestListAdministratorSeesFullDetail(t *testing.T) {
	svc, store := newTestService(t)
	seedReport(t, store, 100, time.Now().UTC())

	viewer := &Viewer{Role: models.RoleAdministrator, OrganizationId: 43, OrganizationName: "Red Crescent", Language: "en"}
	got, err := svc.List(context.Background(), viewer, 1, reportstore.Filter{NationalSocietyId: 1, ProjectId: 10})
	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}
	if got.Data[0].IsAnonymized {
		t.Error("expected administrator to see full detail across organizations")
	}
}

func TestListCrossOrganizationRowIsAnonymized(t *testing.T) {
	svc, store := newTestService(t)
	seedReport(t, store, 100, time.Now().UTC())

	viewer := &Viewer{Role: models.RoleManager, OrganizationId: 43, OrganizationName: "Red Crescent", Language: "en"}
	got, err := svc.List(context.Background(), viewer, 1, reportstore.Filter{NationalSocietyId: 1, ProjectId: 10})
	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}
	row := got.Data[0]
	if !row.IsAnonymized {
		t.Fatal("expected cross-organization row to be anonymized")
	}
	if row.DataCollectorDisplayName != "linked to organization Red Cross" {
		t.Errorf("expected organization label, got %q", row.DataCollectorDisplayName)
	}
	if row.PhoneNumber != "" || row.Village != "" || row.Zone != "" {
		t.Errorf("expected phone, village and zone blanked, got %q %q %q", row.PhoneNumber, row.Village, row.Zone)
	}
}

func TestListPaginationAndTotal(t *testing.T) {
	svc, store := newTestService(t)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedReport(t, store, 100, base.Add(time.Duration(i)*time.Hour))
	}

	viewer := &Viewer{Role: models.RoleManager, OrganizationId: 42, OrganizationName: "Red Cross", Language: "en"}
	f := reportstore.Filter{NationalSocietyId: 1, ProjectId: 10}

	page1, err := svc.List(context.Background(), viewer, 1, f)
	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}
	if len(page1.Data) != 2 || page1.TotalRows != 5 {
		t.Errorf("expected 2 rows of 5, got %d of %d", len(page1.Data), page1.TotalRows)
	}

	page3, err := svc.List(context.Background(), viewer, 3, f)
	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}
	if len(page3.Data) != 1 {
		t.Errorf("expected last page with 1 row, got %d", len(page3.Data))
	}

	page9, err := svc.List(context.Background(), viewer, 9, f)
	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}
	if len(page9.Data) != 0 || page9.TotalRows != 5 {
		t.Errorf("expected empty page past the end with total 5, got %d rows total %d", len(page9.Data), page9.TotalRows)
	}
}

func TestListUnknownSendersSkipAnonymization(t *testing.T) {
	svc, store := newTestService(t)
	r := models.Report{
		NationalSocietyId: 1,
		ReceivedAt:        time.Now().UTC(),
		Status:            models.ReportStatusNew,
		ReportType:        models.ReportTypeSingle,
		HealthRiskId:      3,
		Sender:            "+220999999",
	}
	if err := store.Save(context.Background(), &r); err != nil {
		t.Fatalf("expected no error seeding report, got %s", err.Error())
	}

	viewer := &Viewer{Role: models.RoleManager, OrganizationId: 43, OrganizationName: "Red Crescent", Language: "en"}
	got, err := svc.List(context.Background(), viewer, 1, reportstore.Filter{NationalSocietyId: 1, UnknownSenders: true})
	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}
	if len(got.Data) != 1 {
		t.Fatalf("expected 1 unknown sender row, got %d", len(got.Data))
	}
	if got.Data[0].IsAnonymized {
		t.Error("expected unknown sender row to skip anonymization")
	}
	if got.Data[0].PhoneNumber != "+220999999" {
		t.Errorf("expected phone number kept for unknown sender, got %q", got.Data[0].PhoneNumber)
	}
}

func TestResolveVisibility(t *testing.T) {
	redCross := models.OrganizationLink{OrganizationId: 42, OrganizationName: "Red Cross"}
	redCrescent := models.OrganizationLink{OrganizationId: 43, OrganizationName: "Red Crescent"}
	sameNameOtherId := models.OrganizationLink{OrganizationId: 44, OrganizationName: "Red Cross"}

	tests := []struct {
		name      string
		role      models.UserRole
		viewerOrg models.OrganizationLink
		rowOrg    models.OrganizationLink
		want      Visibility
	}{
		{"administrator", models.RoleAdministrator, redCrescent, redCross, Full},
		{"same organization", models.RoleManager, redCross, redCross, Full},
		{"different organization", models.RoleManager, redCrescent, redCross, AnonymizedToOrganization},
		{"renamed membership", models.RoleManager, redCross, sameNameOtherId, AnonymizedToSupervisor},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveVisibility(tc.role, tc.viewerOrg, tc.rowOrg); got != tc.want {
				t.Errorf("expected visibility %d, got %d", tc.want, got)
			}
		})
	}
}

type failingRegistrar struct {
	calls int
}

func (f *failingRegistrar) Register(_ context.Context, _ int, _ string) error {
	f.calls++
	return errors.New("registration endpoint unavailable")
}

func TestAcceptStampsAndRegisters(t *testing.T) {
	svc, store := newTestService(t)
	reg := &failingRegistrar{}
	svc.Registrar = reg
	r := seedReport(t, store, 100, time.Now().UTC())

	warnings, err := svc.Accept(context.Background(), r.Id, "anna@example.org")
	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 registration warning, got %d", len(warnings))
	}

	got, err := store.Get(context.Background(), r.Id)
	if err != nil {
		t.Fatalf("expected no error on get, got %s", err.Error())
	}
	if got.Status != models.ReportStatusAccepted {
		t.Errorf("expected status Accepted despite registration failure, got %s", got.Status)
	}
	if got.AcceptedAt == nil || got.AcceptedBy != "anna@example.org" {
		t.Errorf("expected actor and timestamp stamped, got %v %q", got.AcceptedAt, got.AcceptedBy)
	}
}

func TestAcceptAlreadyCrossChecked(t *testing.T) {
	svc, store := newTestService(t)
	reg := &failingRegistrar{}
	svc.Registrar = reg
	r := seedReport(t, store, 100, time.Now().UTC())

	if _, err := svc.Accept(context.Background(), r.Id, "anna@example.org"); err != nil {
		t.Fatalf("expected first accept to pass, got %s", err.Error())
	}
	callsAfterFirst := reg.calls

	_, err := svc.Accept(context.Background(), r.Id, "anna@example.org")
	if !errors.Is(err, ErrAlreadyCrossChecked) {
		t.Errorf("expected ErrAlreadyCrossChecked, got %v", err)
	}
	if reg.calls != callsAfterFirst {
		t.Error("expected no second registration attempt")
	}
}

func TestAcceptAfterDismiss(t *testing.T) {
	svc, store := newTestService(t)
	r := seedReport(t, store, 100, time.Now().UTC())

	if _, err := svc.Dismiss(context.Background(), r.Id, "sam@example.org"); err != nil {
		t.Fatalf("expected dismiss to pass, got %s", err.Error())
	}
	if _, err := svc.Accept(context.Background(), r.Id, "anna@example.org"); err != nil {
		t.Fatalf("expected accept of a dismissed report to pass, got %s", err.Error())
	}

	got, err := store.Get(context.Background(), r.Id)
	if err != nil {
		t.Fatalf("expected no error on get, got %s", err.Error())
	}
	if got.Status != models.ReportStatusAccepted {
		t.Errorf("expected status Accepted after re-transition, got %s", got.Status)
	}
	if got.AcceptedAt == nil || got.AcceptedBy != "anna@example.org" {
		t.Errorf("expected actor and timestamp stamped, got %v %q", got.AcceptedAt, got.AcceptedBy)
	}
}

// racingStore commits a dismiss between the cross-check read and write.
type racingStore struct {
	*reportstore.MemoryStore
}

func (s *racingStore) Get(ctx context.Context, id int) (models.Report, error) {
	r, err := s.MemoryStore.Get(ctx, id)
	if err != nil {
		return r, err
	}
	committed := r
	now := time.Now().UTC()
	committed.Status = models.ReportStatusRejected
	committed.RejectedAt = &now
	committed.RejectedBy = "sam@example.org"
	if err := s.MemoryStore.Save(ctx, &committed); err != nil {
		return models.Report{}, err
	}
	return r, nil
}

func TestAcceptLosingConcurrentTransition(t *testing.T) {
	svc, store := newTestService(t)
	reg := &failingRegistrar{}
	svc.Registrar = reg
	r := seedReport(t, store, 100, time.Now().UTC())
	svc.Store = &racingStore{MemoryStore: store}

	_, err := svc.Accept(context.Background(), r.Id, "anna@example.org")
	if !errors.Is(err, ErrAlreadyCrossChecked) {
		t.Fatalf("expected ErrAlreadyCrossChecked for the losing accept, got %v", err)
	}
	if reg.calls != 0 {
		t.Error("expected no registration attempt for the losing accept")
	}

	got, err := store.Get(context.Background(), r.Id)
	if err != nil {
		t.Fatalf("expected no error on get, got %s", err.Error())
	}
	if got.Status != models.ReportStatusRejected {
		t.Errorf("expected the concurrent dismiss to stand, got %s", got.Status)
	}
}

func TestCrossCheckDomainErrors(t *testing.T) {
	svc, store := newTestService(t)

	if _, err := svc.Dismiss(context.Background(), 9999, "anna@example.org"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}

	dcp := seedReport(t, store, 100, time.Now().UTC())
	dcp.ReportType = models.ReportTypeDataCollectionPoint
	if err := store.Save(context.Background(), &dcp); err != nil {
		t.Fatalf("expected no error on save, got %s", err.Error())
	}
	if _, err := svc.Accept(context.Background(), dcp.Id, "anna@example.org"); !errors.Is(err, ErrCannotCrossCheckDcpReport) {
		t.Errorf("expected ErrCannotCrossCheckDcpReport, got %v", err)
	}

	noLoc := seedReport(t, store, 100, time.Now().UTC())
	noLoc.Location = nil
	if err := store.Save(context.Background(), &noLoc); err != nil {
		t.Fatalf("expected no error on save, got %s", err.Error())
	}
	if _, err := svc.Accept(context.Background(), noLoc.Id, "anna@example.org"); !errors.Is(err, ErrCannotCrossCheckReportWithoutLocation) {
		t.Errorf("expected ErrCannotCrossCheckReportWithoutLocation, got %v", err)
	}
}

func TestDismissStampsRejection(t *testing.T) {
	svc, store := newTestService(t)
	r := seedReport(t, store, 100, time.Now().UTC())

	if _, err := svc.Dismiss(context.Background(), r.Id, "sam@example.org"); err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}
	got, err := store.Get(context.Background(), r.Id)
	if err != nil {
		t.Fatalf("expected no error on get, got %s", err.Error())
	}
	if got.Status != models.ReportStatusRejected {
		t.Errorf("expected status Rejected, got %s", got.Status)
	}
	if got.RejectedAt == nil || got.RejectedBy != "sam@example.org" {
		t.Errorf("expected actor and timestamp stamped, got %v %q", got.RejectedAt, got.RejectedBy)
	}
}
