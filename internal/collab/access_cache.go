package collab

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// cachedDirectory keeps recent access decisions and email lookups in
// memory so a join or a reconnect burst does not hit the database from
// inside the hub loop. Entries expire; revoking a share takes effect
// within the TTL.
type cachedDirectory struct {
	inner AccessDirectory
	cache *cache.Cache
}

func NewCachedDirectory(inner AccessDirectory, ttl time.Duration) AccessDirectory {
	return &cachedDirectory{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (d *cachedDirectory) CheckAccess(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	key := "access:" + userID.String() + ":" + projectID.String()
	if v, found := d.cache.Get(key); found {
		return v.(bool), nil
	}
	ok, err := d.inner.CheckAccess(ctx, userID, projectID)
	if err != nil {
		return false, err
	}
	d.cache.Set(key, ok, cache.DefaultExpiration)
	return ok, nil
}

func (d *cachedDirectory) ResolveEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	key := "email:" + userID.String()
	if v, found := d.cache.Get(key); found {
		return v.(string), nil
	}
	email, err := d.inner.ResolveEmail(ctx, userID)
	if err != nil {
		return "", err
	}
	d.cache.Set(key, email, cache.DefaultExpiration)
	return email, nil
}
