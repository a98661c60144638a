package booking

import (
	"context"
	"sort"
	"sync"

	"bhutantours/models"
)

type memBookings struct {
	mu   sync.Mutex
	byID map[string]models.Booking
}

func newMemBookings() *memBookings { return &memBookings{byID: map[string]models.Booking{}} }

func (m *memBookings) Create(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[b.ID] = *b
	return nil
}

func (m *memBookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memBookings) list(keep func(models.Booking) bool) []models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.byID {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memBookings) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	return m.list(func(b models.Booking) bool { return b.UserID == userID }), nil
}

func (m *memBookings) ListAll(_ context.Context) ([]models.Booking, error) {
	return m.list(func(models.Booking) bool { return true }), nil
}

func (m *memBookings) ListSealed(_ context.Context) ([]models.Booking, error) {
	return m.list(func(b models.Booking) bool { return b.EncryptedDetails != nil }), nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	m.byID[id] = b
	return true, nil
}

func (m *memBookings) DeleteIfStatus(_ context.Context, id, status string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok || b.Status != status {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *memBookings) ReplaceEncryptedDetails(_ context.Context, id string, prev, next models.EncryptedBundle) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok || b.EncryptedDetails == nil || *b.EncryptedDetails != prev {
		return false, nil
	}
	b.EncryptedDetails = &next
	m.byID[id] = b
	return true, nil
}

type memPackages struct {
	mu   sync.Mutex
	byID map[string]models.TourPackage
}

func newMemPackages(pkgs ...models.TourPackage) *memPackages {
	m := &memPackages{byID: map[string]models.TourPackage{}}
	for _, p := range pkgs {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memPackages) Create(_ context.Context, p *models.TourPackage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = *p
	return nil
}

func (m *memPackages) GetByID(_ context.Context, id string) (*models.TourPackage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memPackages) GetByIDs(_ context.Context, ids []string) (map[string]*models.TourPackage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]*models.TourPackage{}
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			p := p
			out[id] = &p
		}
	}
	return out, nil
}

func (m *memPackages) ListActive(_ context.Context) ([]models.TourPackage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TourPackage
	for _, p := range m.byID {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPackages) Update(_ context.Context, p *models.TourPackage) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return false, nil
	}
	m.byID[p.ID] = *p
	return true, nil
}

func (m *memPackages) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byID[id]
	delete(m.byID, id)
	return ok, nil
}

func (m *memPackages) ReserveSpots(_ context.Context, id string, n int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok || !p.IsActive || p.AvailableSpots < n {
		return false, nil
	}
	p.AvailableSpots -= n
	m.byID[id] = p
	return true, nil
}

func (m *memPackages) ReleaseSpots(_ context.Context, id string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.byID[id]
	p.AvailableSpots += n
	m.byID[id] = p
	return nil
}

func (m *memPackages) spots(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].AvailableSpots
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []models.MailPayload
}

func (r *recordingDispatcher) Dispatch(_ context.Context, p models.MailPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, p)
	return nil
}
