package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/estia/marketplace-service/internal/models"
)

const listingTTL = 1 * time.Hour

// ListingCache is a read-through cache for the buyer-facing listing detail.
// Every moderation mutation invalidates the cached entry.
type ListingCache struct {
	client *redis.Client
}

func NewListingCache(addr, password string) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &ListingCache{client: client}, nil
}

func (c *ListingCache) GetListing(ctx context.Context, id string) (*models.Property, error) {
	data, err := c.client.Get(ctx, "listing:"+id).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}
	var p models.Property
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ListingCache) SetListing(ctx context.Context, p *models.Property) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "listing:"+p.ID.String(), data, listingTTL).Err()
}

func (c *ListingCache) DeleteListing(ctx context.Context, id string) error {
	return c.client.Del(ctx, "listing:"+id).Err()
}

func (c *ListingCache) Close() error {
	return c.client.Close()
}
