package reportstore

import (
	"context"
	"sync"

	"github.com/openews/report-server/internal/models"
)

// MemoryStore keeps the report set in process memory. Used by tests and by
// local single-node deployments that have no postgres bound.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[int]models.Report
	links   []models.OrganizationLink
	names   map[string]map[int]string
	nextId  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: map[int]models.Report{},
		names:   map[string]map[int]string{},
		nextId:  1,
	}
}

func (m *MemoryStore) Select(ctx context.Context, f Filter) ([]models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := []models.Report{}
	for _, r := range m.reports {
		orgId := 0
		if link, ok := OwningOrganization(m.links, r); ok {
			orgId = link.OrganizationId
		}
		if f.Matches(r, orgId) {
			matched = append(matched, r)
		}
	}
	f.Sort(matched)
	return matched, nil
}

func (m *MemoryStore) Get(_ context.Context, id int) (models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[id]
	if !ok {
		return models.Report{}, ErrReportNotFound
	}
	return r, nil
}

func (m *MemoryStore) Save(_ context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.Id == 0 {
		r.Id = m.nextId
		m.nextId++
	} else if r.Id >= m.nextId {
		m.nextId = r.Id + 1
	}
	m.reports[r.Id] = *r
	return nil
}

func (m *MemoryStore) Transition(_ context.Context, r *models.Report, from models.ReportStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.reports[r.Id]
	if !ok {
		return ErrReportNotFound
	}
	if stored.Status != from {
		return ErrStatusConflict
	}
	m.reports[r.Id] = *r
	return nil
}

func (m *MemoryStore) OrganizationLinks(_ context.Context, nationalSocietyId int) ([]models.OrganizationLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := []models.OrganizationLink{}
	for _, l := range m.links {
		if l.NationalSocietyId == nationalSocietyId {
			links = append(links, l)
		}
	}
	return links, nil
}

func (m *MemoryStore) HealthRiskNames(_ context.Context, language string) (map[int]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := map[int]string{}
	for id, name := range m.names[language] {
		names[id] = name
	}
	return names, nil
}

// SetOrganizationLinks replaces the link table. Test seeding helper.
func (m *MemoryStore) SetOrganizationLinks(links []models.OrganizationLink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = links
}

// SetHealthRiskName registers a localized health risk name. Test seeding helper.
func (m *MemoryStore) SetHealthRiskName(language string, healthRiskId int, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.names[language] == nil {
		m.names[language] = map[int]string{}
	}
	m.names[language][healthRiskId] = name
}
