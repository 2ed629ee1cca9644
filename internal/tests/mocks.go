package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"bits/internal/domain"
	"bits/internal/redis"
	"bits/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK INCIDENT REPOSITORY
// ──────────────────────────────────────────────

// MockIncidentRepository is a mock implementation of IncidentRepository.
type MockIncidentRepository struct {
	mu        sync.RWMutex
	incidents map[int64]*domain.Incident
	nextID    int64

	// Counters for verification
	CreateCallCount     int32
	DeactivateCallCount int32

	// Error injection
	CreateError     error
	DeactivateError error
	ListError       error
	CountError      error
}

// NewMockIncidentRepository creates a new mock incident repository.
func NewMockIncidentRepository() *MockIncidentRepository {
	return &MockIncidentRepository{
		incidents: make(map[int64]*domain.Incident),
	}
}

func (m *MockIncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	incident.ID = m.nextID
	incident.CreatedAt = time.Now()
	incident.Active = true
	copy := *incident
	m.incidents[incident.ID] = &copy
	return nil
}

func (m *MockIncidentRepository) GetByID(ctx context.Context, id int64) (*domain.Incident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	incident, ok := m.incidents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *incident
	return &copy, nil
}

// ListActive returns active incidents in map order; ordering is the
// service's job.
func (m *MockIncidentRepository) ListActive(ctx context.Context) ([]*domain.Incident, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Incident, 0, len(m.incidents))
	for _, i := range m.incidents {
		if i.Active {
			copy := *i
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockIncidentRepository) Deactivate(ctx context.Context, id int64) error {
	atomic.AddInt32(&m.DeactivateCallCount, 1)
	if m.DeactivateError != nil {
		return m.DeactivateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if incident, ok := m.incidents[id]; ok {
		incident.Active = false
	}
	return nil
}

func (m *MockIncidentRepository) CountActiveByZone(ctx context.Context) (map[string]int, error) {
	if m.CountError != nil {
		return nil, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, i := range m.incidents {
		if i.Active {
			counts[i.Zone]++
		}
	}
	return counts, nil
}

func (m *MockIncidentRepository) CountActiveInZones(ctx context.Context, zones ...string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, i := range m.incidents {
		if !i.Active {
			continue
		}
		for _, z := range zones {
			if i.Zone == z {
				n++
				break
			}
		}
	}
	return n, nil
}

// GetIncident returns an incident for test assertions.
func (m *MockIncidentRepository) GetIncident(id int64) *domain.Incident {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.incidents[id]
}

// ──────────────────────────────────────────────
// MOCK PRICING RECORD REPOSITORY
// ──────────────────────────────────────────────

// MockPricingRecordRepository is a mock implementation of PricingRecordRepository.
type MockPricingRecordRepository struct {
	mu      sync.Mutex
	records []domain.PricingRecord

	// Error injection
	CreateError error
}

// NewMockPricingRecordRepository creates a new mock pricing audit repository.
func NewMockPricingRecordRepository() *MockPricingRecordRepository {
	return &MockPricingRecordRepository{}
}

func (m *MockPricingRecordRepository) Create(ctx context.Context, record *domain.PricingRecord) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record.ID = int64(len(m.records) + 1)
	record.CreatedAt = time.Now()
	m.records = append(m.records, *record)
	return nil
}

// Records returns the stored audit rows.
func (m *MockPricingRecordRepository) Records() []domain.PricingRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PricingRecord(nil), m.records...)
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of the incident geo index.
// Distances are not computed; every indexed incident is "nearby".
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[int64]redis.IncidentLocation

	// Error injection
	FindError    error
	IndexedError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make(map[int64]redis.IncidentLocation),
	}
}

func (m *MockLocationStore) AddIncident(ctx context.Context, id int64, lat, lon float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[id] = redis.IncidentLocation{IncidentID: id, Lat: lat, Lon: lon}
	return nil
}

func (m *MockLocationStore) FindNearbyIncidents(ctx context.Context, lat, lon, radiusKm float64) ([]redis.IncidentLocation, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]redis.IncidentLocation, 0, len(m.locations))
	for _, loc := range m.locations {
		result = append(result, loc)
	}
	return result, nil
}

func (m *MockLocationStore) RemoveIncident(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, id)
	return nil
}

func (m *MockLocationStore) IndexedIncidents(ctx context.Context) ([]int64, error) {
	if m.IndexedError != nil {
		return nil, m.IndexedError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int64, 0, len(m.locations))
	for id := range m.locations {
		ids = append(ids, id)
	}
	return ids, nil
}

// HasIncident checks whether an incident is indexed.
func (m *MockLocationStore) HasIncident(id int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.locations[id]
	return ok
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu     sync.Mutex
	expiry time.Time
	token  string

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{}
}

func (m *MockLockStore) AcquireLedgerLock(ctx context.Context, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Now().Before(m.expiry) {
		return "", false, nil // Lock still held.
	}
	m.expiry = time.Now().Add(ttl)
	m.token = uuid.New().String()
	return m.token, true, nil
}

func (m *MockLockStore) ReleaseLedgerLock(ctx context.Context, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if token != m.token {
		return nil
	}
	m.expiry = time.Time{}
	m.token = ""
	return nil
}

// IsLocked checks if the ledger is locked (for test assertions).
func (m *MockLockStore) IsLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Now().Before(m.expiry)
}

// ──────────────────────────────────────────────
// MOCK EVENT PUBLISHER
// ──────────────────────────────────────────────

// MockEventPublisher records published ledger events.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []domain.IncidentEvent

	// Error injection
	PublishError error
}

// NewMockEventPublisher creates a new mock event publisher.
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) PublishIncidentEvent(ctx context.Context, event domain.IncidentEvent) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns the published events.
func (m *MockEventPublisher) Events() []domain.IncidentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.IncidentEvent(nil), m.events...)
}

// ──────────────────────────────────────────────
// MOCK SESSION / WEATHER STORE
// ──────────────────────────────────────────────

// MockCacheStore is an in-memory session and weather snapshot store.
type MockCacheStore struct {
	mu       sync.Mutex
	sessions map[string]domain.SessionState
	weather  domain.Weather

	// Error injection
	WeatherError error
	SaveError    error
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		sessions: make(map[string]domain.SessionState),
	}
}

func (m *MockCacheStore) CurrentWeather(ctx context.Context, sample func() domain.Weather, ttl time.Duration) (domain.Weather, error) {
	if m.WeatherError != nil {
		return "", m.WeatherError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.weather == "" {
		m.weather = sample()
	}
	return m.weather, nil
}

func (m *MockCacheStore) GetSession(ctx context.Context, id string) (*domain.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (m *MockCacheStore) SaveSession(ctx context.Context, state *domain.SessionState) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[state.ID] = *state
	return nil
}

// ──────────────────────────────────────────────
// FIXED RANDOM SOURCE
// ──────────────────────────────────────────────

// FixedSource always draws the lowest value of a range.
type FixedSource struct{}

func (FixedSource) IntN(n int) int { return 0 }

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)

// Ensure mocks implement their interfaces.
var (
	_ repository.IncidentRepository      = (*MockIncidentRepository)(nil)
	_ repository.PricingRecordRepository = (*MockPricingRecordRepository)(nil)
	_ redis.LocationStoreInterface       = (*MockLocationStore)(nil)
	_ redis.LockStoreInterface           = (*MockLockStore)(nil)
	_ redis.EventPublisherInterface      = (*MockEventPublisher)(nil)
	_ redis.WeatherStoreInterface        = (*MockCacheStore)(nil)
	_ redis.SessionStoreInterface        = (*MockCacheStore)(nil)
)
