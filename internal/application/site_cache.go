package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/cloudevents"
	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/metrics"
)

// Site cache defaults
const (
	DefaultSiteCacheTTL          = 180 * time.Second
	DefaultSiteCacheRetryBackoff = 60 * time.Second
)

// Relink triggers reported to metrics
const (
	relinkAutomatic = "automatic"
	relinkManual    = "manual"
)

// SiteCacheConfig holds configuration for the site cache
type SiteCacheConfig struct {
	TTL          time.Duration
	RetryBackoff time.Duration
	Filter       domain.SiteFilter
}

// DefaultSiteCacheConfig returns default configuration
func DefaultSiteCacheConfig() SiteCacheConfig {
	return SiteCacheConfig{
		TTL:          DefaultSiteCacheTTL,
		RetryBackoff: DefaultSiteCacheRetryBackoff,
		Filter:       domain.DefaultSiteFilter(),
	}
}

// SiteCacheOptions carries the optional collaborators of a SiteCache
type SiteCacheOptions struct {
	Mirror   SnapshotStore
	Recorder EventRecorder
	Metrics  *metrics.Metrics
	Clock    func() time.Time
}

// SiteCache serves the filtered upstream site list with bounded staleness and
// relinks pickup points whose site changed.
//
// One mutex guards read-or-refresh: concurrent readers during a refresh wait for it
// and then all observe the new snapshot, so at most one fetch is in flight.
type SiteCache struct {
	source       SitesSource
	pickupPoints domain.PickupPointRepository
	provider     PickupPointProvider
	config       SiteCacheConfig
	mirror       SnapshotStore
	recorder     EventRecorder
	metrics      *metrics.Metrics
	now          func() time.Time
	logger       *logging.Logger

	mu       sync.Mutex
	snapshot *Snapshot

	lifecycleMu sync.Mutex
	running     bool
	stopCh      chan struct{}
	stoppedCh   chan struct{}
}

// NewSiteCache creates a SiteCache
func NewSiteCache(
	source SitesSource,
	pickupPoints domain.PickupPointRepository,
	provider PickupPointProvider,
	config SiteCacheConfig,
	opts SiteCacheOptions,
	logger *logging.Logger,
) *SiteCache {
	if config.TTL <= 0 {
		config.TTL = DefaultSiteCacheTTL
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = DefaultSiteCacheRetryBackoff
	}
	if len(config.Filter.AllowedTimezones) == 0 {
		config.Filter.AllowedTimezones = domain.AllowedTimezones()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &SiteCache{
		source:       source,
		pickupPoints: pickupPoints,
		provider:     provider,
		config:       config,
		mirror:       opts.Mirror,
		recorder:     opts.Recorder,
		metrics:      opts.Metrics,
		now:          now,
		logger:       logger.WithComponent("site-cache"),
	}
}

// GetAvailableSites returns the cached sites enriched with their pickup point external id.
// The cache is refreshed first when forced, expired or empty. When that refresh fails the
// previous snapshot is served; with no snapshot at all the error wraps
// domain.ErrSitesSourceUnavailable.
func (c *SiteCache) GetAvailableSites(ctx context.Context, forceRefresh bool) ([]domain.Site, error) {
	c.mu.Lock()
	if forceRefresh || !c.validLocked() {
		if err := c.refreshLocked(ctx); err != nil {
			if c.snapshot == nil {
				c.mu.Unlock()
				return nil, fmt.Errorf("%w: %v", domain.ErrSitesSourceUnavailable, err)
			}
			c.logger.WithError(err).Warn("Serving stale site snapshot", "fetchedAt", c.snapshot.FetchedAt)
		}
	}
	sites := cloneSites(c.snapshot.Sites)
	c.mu.Unlock()

	return c.enrich(ctx, sites), nil
}

// Refresh forces a fetch from the sites source
func (c *SiteCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// Warm performs the initial refresh. If the source is down it falls back to the
// mirrored snapshot, so the service can answer from the last known site list.
func (c *SiteCache) Warm(ctx context.Context) error {
	err := c.Refresh(ctx)
	if err == nil || c.mirror == nil {
		return err
	}

	snapshot, loadErr := c.mirror.Load(ctx)
	if loadErr != nil {
		c.logger.WithError(loadErr).Warn("Failed to load mirrored site snapshot")
		return err
	}
	if snapshot == nil {
		return err
	}

	c.mu.Lock()
	if c.snapshot == nil {
		c.snapshot = snapshot
	}
	c.mu.Unlock()

	c.logger.Warn("Sites source unavailable, serving mirrored snapshot",
		"error", err.Error(),
		"sites", len(snapshot.Sites),
		"fetchedAt", snapshot.FetchedAt,
	)
	return nil
}

// LastRefresh returns the fetch time of the current snapshot, zero if there is none
func (c *SiteCache) LastRefresh() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return time.Time{}
	}
	return c.snapshot.FetchedAt
}

// validLocked reports whether the snapshot is non-empty and younger than the TTL.
// An empty snapshot is never valid.
func (c *SiteCache) validLocked() bool {
	if c.snapshot == nil || len(c.snapshot.Sites) == 0 {
		return false
	}
	return c.now().Sub(c.snapshot.FetchedAt) < c.config.TTL
}

func (c *SiteCache) refreshLocked(ctx context.Context) error {
	start := c.now()

	raw, err := c.source.FetchAll(ctx)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordSiteCacheRefresh(false, 0, start)
		}
		return fmt.Errorf("failed to fetch sites: %w", err)
	}

	sites := c.config.Filter.Apply(raw)
	changed, relinked := c.reconcile(ctx, sites)

	c.snapshot = &Snapshot{Sites: sites, FetchedAt: c.now()}

	if c.metrics != nil {
		c.metrics.RecordSiteCacheRefresh(true, len(sites), c.snapshot.FetchedAt)
	}
	c.logger.CacheRefresh(ctx, len(sites), changed, relinked, c.now().Sub(start))

	if c.mirror != nil {
		if err := c.mirror.Save(ctx, *c.snapshot); err != nil {
			c.logger.WithError(err).Warn("Failed to mirror site snapshot")
		}
	}
	return nil
}

// reconcile compares the new site list with the current snapshot and relinks the
// pickup point of every materially changed site
func (c *SiteCache) reconcile(ctx context.Context, sites []domain.Site) (changed, relinked int) {
	if c.snapshot == nil {
		return 0, 0
	}
	previous := domain.IndexSites(c.snapshot.Sites)

	for _, site := range sites {
		prev, ok := previous[site.SiteID]
		if !ok {
			continue
		}
		fields := domain.ChangedFields(prev, site)
		if len(fields) == 0 {
			continue
		}
		changed++

		c.logger.Info("Site changed", "siteId", site.SiteID, "fields", fields)
		ok = c.relink(ctx, site)
		if ok {
			relinked++
		}

		recordEvent(ctx, c.recorder, c.logger, aggregateSite, site.SiteID, cloudevents.SiteChanged, cloudevents.SiteChangedData{
			SiteID:        site.SiteID,
			ChangedFields: fields,
			Relinked:      ok,
		})
	}
	return changed, relinked
}

// relink pushes the current site attributes to the provider registration of the
// site's pickup point and stores them locally. Failures are logged only.
func (c *SiteCache) relink(ctx context.Context, site domain.Site) bool {
	pp, err := c.pickupPoints.FindBySiteID(ctx, site.SiteID)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to look up pickup point for changed site", "siteId", site.SiteID)
		return false
	}
	if pp == nil || !pp.IsLinked() {
		return false
	}

	reg := domain.RegistrationFromSite(site, pp)
	if err := c.provider.Update(ctx, *pp.ProviderID, reg); err != nil {
		c.recordRelink(false)
		c.logger.WithError(err).Error("Automatic pickup point relink failed",
			"siteId", site.SiteID,
			"pickupPointId", pp.ID,
			"providerId", *pp.ProviderID,
		)
		return false
	}

	pp.ApplyRegistration(reg, site.SiteID)
	if err := c.pickupPoints.Update(ctx, pp); err != nil {
		c.recordRelink(false)
		c.logger.WithError(err).Error("Failed to store relinked pickup point", "pickupPointId", pp.ID)
		return false
	}

	c.recordRelink(true)
	c.logger.Info("Pickup point relinked after site change", "siteId", site.SiteID, "pickupPointId", pp.ID)
	recordEvent(ctx, c.recorder, c.logger, aggregatePickupPoint, pp.ID, cloudevents.PickupPointRelinked, cloudevents.EntityData{
		ID:     pp.ID,
		SiteID: &pp.SiteID,
		Entity: ToPickupPointDTO(pp),
	})
	return true
}

func (c *SiteCache) recordRelink(success bool) {
	if c.metrics != nil {
		c.metrics.RecordPickupPointRelink(relinkAutomatic, success)
	}
}

// enrich overlays the external id of each site's pickup point onto the copies
func (c *SiteCache) enrich(ctx context.Context, sites []domain.Site) []domain.Site {
	points, err := c.pickupPoints.FindAll(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to load pickup points for site enrichment")
		return sites
	}

	externalIDs := make(map[int64]string, len(points))
	for _, pp := range points {
		if pp.ExternalID != "" {
			externalIDs[pp.SiteID] = pp.ExternalID
		}
	}
	for i := range sites {
		if id, ok := externalIDs[sites[i].SiteID]; ok {
			sites[i].PickingPointExternalID = id
		}
	}
	return sites
}

// Start launches the background refresh loop
func (c *SiteCache) Start(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.running {
		return fmt.Errorf("site cache refresher already running")
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.stoppedCh = make(chan struct{})

	c.logger.Info("Starting site cache refresher", "ttl", c.config.TTL, "retryBackoff", c.config.RetryBackoff)

	go c.run(ctx, c.stopCh, c.stoppedCh)
	return nil
}

// Stop signals the loop and waits for it to exit
func (c *SiteCache) Stop() error {
	c.lifecycleMu.Lock()
	if !c.running {
		c.lifecycleMu.Unlock()
		return fmt.Errorf("site cache refresher not running")
	}
	stopCh, stoppedCh := c.stopCh, c.stoppedCh
	c.running = false
	c.lifecycleMu.Unlock()

	close(stopCh)
	<-stoppedCh

	c.logger.Info("Site cache refresher stopped")
	return nil
}

// IsRunning returns whether the background refresher is running
func (c *SiteCache) IsRunning() bool {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	return c.running
}

// run refreshes every TTL. After a failed refresh the next attempt comes after
// RetryBackoff instead.
func (c *SiteCache) run(ctx context.Context, stopCh <-chan struct{}, stoppedCh chan<- struct{}) {
	defer close(stoppedCh)

	timer := time.NewTimer(c.config.TTL)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			wait := c.config.TTL
			if err := c.Refresh(ctx); err != nil {
				wait = c.config.RetryBackoff
				c.logger.WithError(err).Error("Background site refresh failed", "retryIn", wait)
			}
			timer.Reset(wait)
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func cloneSites(sites []domain.Site) []domain.Site {
	out := make([]domain.Site, len(sites))
	copy(out, sites)
	return out
}
