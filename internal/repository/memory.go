package repository

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/streamtip/donatio/internal/models"
)

// MemoryDB keeps donors and donations in process memory.
type MemoryDB struct {
	mu        sync.RWMutex
	donors    map[string]*models.Donor
	donations []*models.DonationRecord
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{donors: make(map[string]*models.Donor)}
}

func (m *MemoryDB) Close() error { return nil }

func (m *MemoryDB) AddDonation(record *models.DonationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.donations {
		if existing.ID == record.ID {
			return fmt.Errorf("failed to add donation: duplicate id %s", record.ID)
		}
	}
	r := *record
	m.donations = append(m.donations, &r)
	return nil
}

func (m *MemoryDB) ListDonations(limit int) ([]*models.DonationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.DonationRecord, 0, len(m.donations))
	for i := len(m.donations) - 1; i >= 0; i-- {
		r := *m.donations[i]
		out = append(out, &r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return limitSlice(out, limit), nil
}

func (m *MemoryDB) AddToDonorTotal(name string, amount float64, timestamp int64) (*models.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	donor, ok := m.donors[name]
	if !ok {
		donor = &models.Donor{ID: uuid.NewString(), Name: name, Level: 1}
		m.donors[name] = donor
	}
	donor.TotalDonated += amount
	donor.LastDonation = timestamp
	d := *donor
	return &d, nil
}

func (m *MemoryDB) GetDonor(name string) (*models.Donor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	donor, ok := m.donors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrDonorNotFound, name)
	}
	d := *donor
	return &d, nil
}

func (m *MemoryDB) ListDonors(limit int) ([]*models.Donor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Donor, 0, len(m.donors))
	for _, donor := range m.donors {
		d := *donor
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalDonated != out[j].TotalDonated {
			return out[i].TotalDonated > out[j].TotalDonated
		}
		return out[i].Name < out[j].Name
	})
	return limitSlice(out, limit), nil
}

func (m *MemoryDB) SeedDonors(donors []*models.Donor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, donor := range donors {
		if _, ok := m.donors[donor.Name]; ok {
			continue
		}
		d := *donor
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		m.donors[d.Name] = &d
	}
	return nil
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
