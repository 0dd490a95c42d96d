package availability

import (
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/vmunix/mediarr/internal/adapters/plex"
	"github.com/vmunix/mediarr/internal/adapters/sonarr"
)

// passCache remembers Plex season listings and Sonarr series statistics for
// the length of one pass, so a show with N seasons costs one listing call per
// source instead of N.
type passCache struct {
	c *cache.Cache
}

func newPassCache() *passCache {
	return &passCache{c: cache.New(cache.NoExpiration, 0)}
}

func plexChildrenKey(ratingKey string) string {
	return "plex:" + ratingKey
}

func seriesKey(instanceID, seriesID int64) string {
	return fmt.Sprintf("sonarr:%d-%d", instanceID, seriesID)
}

func (pc *passCache) children(ratingKey string) ([]plex.Metadata, bool) {
	v, ok := pc.c.Get(plexChildrenKey(ratingKey))
	if !ok {
		return nil, false
	}
	return v.([]plex.Metadata), true
}

func (pc *passCache) setChildren(ratingKey string, items []plex.Metadata) {
	pc.c.SetDefault(plexChildrenKey(ratingKey), items)
}

func (pc *passCache) series(instanceID, seriesID int64) (*sonarr.Series, bool) {
	v, ok := pc.c.Get(seriesKey(instanceID, seriesID))
	if !ok {
		return nil, false
	}
	return v.(*sonarr.Series), true
}

func (pc *passCache) setSeries(instanceID, seriesID int64, s *sonarr.Series) {
	pc.c.SetDefault(seriesKey(instanceID, seriesID), s)
}
