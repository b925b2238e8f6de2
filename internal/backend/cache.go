package backend

import (
	"context"
	"time"

	"github.com/alexanderramin/wbs/internal/importer"
	gocache "github.com/patrickmn/go-cache"
)

// CachedClient serves repeated FetchSnapshot calls for the same project from
// memory until the TTL expires. A successful UpdateTask drops every cached
// snapshot containing the task so the next read reflects the write.
type CachedClient struct {
	next  Client
	cache *gocache.Cache
}

var _ Client = (*CachedClient)(nil)

// NewCachedClient wraps next. A ttl of zero or less disables expiry.
func NewCachedClient(next Client, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &CachedClient{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedClient) FetchSnapshot(ctx context.Context, projectID string) (*importer.SnapshotFile, error) {
	if v, ok := c.cache.Get(projectID); ok {
		return v.(*importer.SnapshotFile), nil
	}
	file, err := c.next.FetchSnapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(projectID, file)
	return file, nil
}

func (c *CachedClient) UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (*importer.TaskRecord, error) {
	rec, err := c.next.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return nil, err
	}
	c.invalidateTask(taskID)
	return rec, nil
}

// Invalidate drops the cached snapshot for projectID.
func (c *CachedClient) Invalidate(projectID string) {
	c.cache.Delete(projectID)
}

func (c *CachedClient) invalidateTask(taskID string) {
	for projectID, item := range c.cache.Items() {
		file, ok := item.Object.(*importer.SnapshotFile)
		if !ok {
			continue
		}
		for _, t := range file.Tasks {
			if t.ID == taskID {
				c.cache.Delete(projectID)
				break
			}
		}
	}
}
