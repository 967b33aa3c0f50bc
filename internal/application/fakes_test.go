package application

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.NewNop()
}

func ptrInt64(v int64) *int64 { return &v }

func ptrFloat(v float64) *float64 { return &v }

// fakeZoneRepo is an in-memory ZoneRepository
type fakeZoneRepo struct {
	mu     sync.Mutex
	zones  map[int64]domain.Zone
	nextID int64
	err    error
}

func newFakeZoneRepo(zones ...domain.Zone) *fakeZoneRepo {
	r := &fakeZoneRepo{zones: make(map[int64]domain.Zone)}
	for _, z := range zones {
		r.zones[z.ID] = z
		if z.ID > r.nextID {
			r.nextID = z.ID
		}
	}
	return r
}

func (r *fakeZoneRepo) Create(ctx context.Context, zone *domain.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nextID++
	zone.ID = r.nextID
	r.zones[zone.ID] = *zone
	return nil
}

func (r *fakeZoneRepo) Update(ctx context.Context, zone *domain.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.zones[zone.ID] = *zone
	return nil
}

func (r *fakeZoneRepo) FindByID(ctx context.Context, id int64) (*domain.Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	z, ok := r.zones[id]
	if !ok {
		return nil, nil
	}
	return &z, nil
}

func (r *fakeZoneRepo) FindBySiteID(ctx context.Context, siteID int64) (*domain.Zone, error) {
	all, err := r.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].BelongsTo(siteID) {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (r *fakeZoneRepo) FindAll(ctx context.Context, skip, limit int) ([]domain.Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Zone, 0, len(r.zones))
	for _, z := range r.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if skip >= len(out) {
		return []domain.Zone{}, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeZoneRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.zones, id)
	return nil
}

// fakeLocationRepo is an in-memory LocationRepository
type fakeLocationRepo struct {
	mu        sync.Mutex
	locations map[int64]domain.Location
	nextID    int64
	err       error
}

func newFakeLocationRepo(locations ...domain.Location) *fakeLocationRepo {
	r := &fakeLocationRepo{locations: make(map[int64]domain.Location)}
	for _, l := range locations {
		r.locations[l.ID] = l
		if l.ID > r.nextID {
			r.nextID = l.ID
		}
	}
	return r
}

func (r *fakeLocationRepo) Create(ctx context.Context, location *domain.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nextID++
	location.ID = r.nextID
	r.locations[location.ID] = *location
	return nil
}

func (r *fakeLocationRepo) Update(ctx context.Context, location *domain.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.locations[location.ID] = *location
	return nil
}

func (r *fakeLocationRepo) FindByID(ctx context.Context, id int64) (*domain.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	l, ok := r.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *fakeLocationRepo) FindAll(ctx context.Context, zoneID *int64, skip, limit int) ([]domain.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Location, 0, len(r.locations))
	for _, l := range r.locations {
		if zoneID == nil || l.InZone(*zoneID) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if skip >= len(out) {
		return []domain.Location{}, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLocationRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.locations, id)
	return nil
}

// fakeTariffRepo is an in-memory TariffRepository
type fakeTariffRepo struct {
	mu      sync.Mutex
	tariffs map[int64]domain.Tariff
	err     error
}

func newFakeTariffRepo(tariffs ...domain.Tariff) *fakeTariffRepo {
	r := &fakeTariffRepo{tariffs: make(map[int64]domain.Tariff)}
	for _, t := range tariffs {
		r.tariffs[t.SiteID] = t
	}
	return r
}

func (r *fakeTariffRepo) Create(ctx context.Context, t *domain.Tariff) error {
	return r.Update(ctx, t)
}

func (r *fakeTariffRepo) Update(ctx context.Context, t *domain.Tariff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.tariffs[t.SiteID] = *t
	return nil
}

func (r *fakeTariffRepo) FindBySiteID(ctx context.Context, siteID int64) (*domain.Tariff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.tariffs[siteID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeTariffRepo) FindAll(ctx context.Context) ([]domain.Tariff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Tariff, 0, len(r.tariffs))
	for _, t := range r.tariffs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SiteID < out[j].SiteID })
	return out, nil
}

func (r *fakeTariffRepo) Delete(ctx context.Context, siteID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.tariffs, siteID)
	return nil
}

// fakePickupPointRepo is an in-memory PickupPointRepository
type fakePickupPointRepo struct {
	mu        sync.Mutex
	points    map[int64]domain.PickupPoint
	nextID    int64
	err       error
	updateErr error
	updates   int
}

func newFakePickupPointRepo(points ...domain.PickupPoint) *fakePickupPointRepo {
	r := &fakePickupPointRepo{points: make(map[int64]domain.PickupPoint)}
	for _, p := range points {
		r.points[p.ID] = p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *fakePickupPointRepo) Create(ctx context.Context, pp *domain.PickupPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nextID++
	pp.ID = r.nextID
	r.points[pp.ID] = *pp
	return nil
}

func (r *fakePickupPointRepo) Update(ctx context.Context, pp *domain.PickupPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	r.points[pp.ID] = *pp
	return nil
}

func (r *fakePickupPointRepo) FindByID(ctx context.Context, id int64) (*domain.PickupPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.points[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePickupPointRepo) FindBySiteID(ctx context.Context, siteID int64) (*domain.PickupPoint, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].SiteID == siteID {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (r *fakePickupPointRepo) FindAll(ctx context.Context) ([]domain.PickupPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.PickupPoint, 0, len(r.points))
	for _, p := range r.points {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePickupPointRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.points, id)
	return nil
}

// fakeOrderRepo is an in-memory OrderRepository
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	o.ID = int64(len(r.orders) + 1)
	r.orders = append(r.orders, *o)
	return nil
}

func (r *fakeOrderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]domain.Order(nil), r.orders...), nil
}

// fakeConfigRepo stores the config singleton in memory
type fakeConfigRepo struct {
	mu  sync.Mutex
	cfg *domain.AppConfig
	err error
}

func (r *fakeConfigRepo) Get(ctx context.Context) (*domain.AppConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.cfg == nil {
		return nil, nil
	}
	cfg := *r.cfg
	return &cfg, nil
}

func (r *fakeConfigRepo) Save(ctx context.Context, cfg *domain.AppConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	c := *cfg
	r.cfg = &c
	return nil
}

// fakeSitesSource serves a configurable site list and counts fetches
type fakeSitesSource struct {
	mu    sync.Mutex
	sites []domain.Site
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (s *fakeSitesSource) set(sites []domain.Site, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites = sites
	s.err = err
}

func (s *fakeSitesSource) FetchAll(ctx context.Context) ([]domain.Site, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Site(nil), s.sites...), nil
}

// fakeSnapshotStore keeps the mirrored snapshot in memory
type fakeSnapshotStore struct {
	mu       sync.Mutex
	snapshot *Snapshot
	saves    int
	err      error
}

func (s *fakeSnapshotStore) Save(ctx context.Context, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.snapshot = &snapshot
	return nil
}

func (s *fakeSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

// fakeGeocoder returns a fixed result
type fakeGeocoder struct {
	result *domain.GeocodedAddress
	err    error
	calls  int
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address, city, country string) (*domain.GeocodedAddress, error) {
	g.calls++
	return g.result, g.err
}

// fakeValidator records validation requests
type fakeValidator struct {
	result   *domain.LogisticsValidation
	err      error
	requests []domain.ValidationRequest
}

func (v *fakeValidator) Validate(ctx context.Context, req domain.ValidationRequest) (*domain.LogisticsValidation, error) {
	v.requests = append(v.requests, req)
	return v.result, v.err
}

// fakeProvider records pickup point registrations
type fakeProvider struct {
	mu        sync.Mutex
	nextID    int64
	created   []domain.ProviderPickupPoint
	updated   map[int64]domain.ProviderPickupPoint
	deleted   []int64
	listed    []map[string]interface{}
	createErr error
	updateErr error
	deleteErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{nextID: 900, updated: make(map[int64]domain.ProviderPickupPoint)}
}

func (p *fakeProvider) Create(ctx context.Context, reg domain.ProviderPickupPoint) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return 0, p.createErr
	}
	p.nextID++
	p.created = append(p.created, reg)
	return p.nextID, nil
}

func (p *fakeProvider) Update(ctx context.Context, providerID int64, reg domain.ProviderPickupPoint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.updateErr != nil {
		return p.updateErr
	}
	p.updated[providerID] = reg
	return nil
}

func (p *fakeProvider) Delete(ctx context.Context, providerID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deleted = append(p.deleted, providerID)
	return nil
}

func (p *fakeProvider) List(ctx context.Context) ([]map[string]interface{}, error) {
	return p.listed, nil
}

// fakeRecorder captures recorded events
type fakeRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

type recordedEvent struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Data          interface{}
}

func (r *fakeRecorder) Record(ctx context.Context, aggregateType, aggregateID, eventType string, data interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, recordedEvent{aggregateType, aggregateID, eventType, data})
	return nil
}

func (r *fakeRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType
	}
	return out
}

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// bogotaSite is a visible colombian site at the given location
func bogotaSite(id int64, name string, lat, lng float64) domain.Site {
	return domain.Site{
		SiteID:       id,
		SiteName:     name,
		SiteAddress:  "Calle " + name,
		SitePhone:    "+573001234567",
		EmailAddress: "sede@example.com",
		CityName:     "Bogotá",
		TimeZone:     domain.TimezoneBogota,
		ShowOnWeb:    true,
		Location:     domain.SiteLocation{lat, lng},
	}
}
