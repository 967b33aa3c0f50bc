package clients

import (
	"context"
	"net/http"

	"github.com/location-manager/zone-service/internal/domain"
)

// SitesSource fetches the raw site list from the upstream sites API
type SitesSource struct {
	url    string
	caller *caller
}

func NewSitesSource(url string, opts Options) *SitesSource {
	return &SitesSource{
		url:    url,
		caller: newCaller("sites", opts),
	}
}

// FetchAll returns every site the upstream knows about, unfiltered
func (s *SitesSource) FetchAll(ctx context.Context) ([]domain.Site, error) {
	resp, err := s.caller.do(ctx, "fetch_all", http.MethodGet, s.url, nil, nil, true)
	if err != nil {
		return nil, err
	}

	var sites []domain.Site
	if err := resp.decode(&sites); err != nil {
		return nil, err
	}
	return sites, nil
}
