package garmin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/daypulse/daypulse/core"
)

const sourceRecordCacheKeyPrefix = "daypulse::source_record::v1"

type cachedFetch struct {
	Record core.SourceRecord
	Found  bool
}

// CachedClient memoizes day fetches so repeated runs inside the cache TTL do
// not hit the tracker again for the same (metric, date) pair.
type CachedClient struct {
	base  core.TrackerClient
	cache repositorycache.CacheService
}

func NewCachedClient(base core.TrackerClient, cacheService repositorycache.CacheService) (*CachedClient, error) {
	if base == nil {
		return nil, fmt.Errorf("garmin: base tracker client is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("garmin: cache service is required")
	}
	return &CachedClient{base: base, cache: cacheService}, nil
}

// SourceRecordCacheKey returns the deterministic cache key for one day fetch:
// daypulse::source_record::v1::<metric>::<date>.
func SourceRecordCacheKey(metric core.MetricID, date string) string {
	segments := []string{
		url.PathEscape(strings.TrimSpace(string(metric))),
		url.PathEscape(strings.TrimSpace(date)),
	}
	return strings.Join(append([]string{sourceRecordCacheKeyPrefix}, segments...), "::")
}

func (c *CachedClient) FetchDaily(ctx context.Context, metric core.MetricID, date string) (core.SourceRecord, bool, error) {
	if c == nil || c.base == nil || c.cache == nil {
		return core.SourceRecord{}, false, fmt.Errorf("garmin: cached client is not configured")
	}

	cacheKey := SourceRecordCacheKey(metric, date)
	fetched, err := repositorycache.GetOrFetch(ctx, c.cache, cacheKey, func(ctx context.Context) (cachedFetch, error) {
		record, found, fetchErr := c.base.FetchDaily(ctx, metric, date)
		if fetchErr != nil {
			return cachedFetch{}, fetchErr
		}
		return cachedFetch{Record: record, Found: found}, nil
	})
	if err != nil {
		return core.SourceRecord{}, false, err
	}
	return fetched.Record, fetched.Found, nil
}

var _ core.TrackerClient = (*CachedClient)(nil)
