package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/reserve_inventory.lua
var reserveInventoryScript string

//go:embed scripts/release_inventory.lua
var releaseInventoryScript string

// ErrNotInitialized is returned when a ticket type has no inventory hash in
// Redis yet; callers fall back to the database path.
var ErrNotInitialized = fmt.Errorf("inventory not initialized in redis")

type Client struct {
	rdb           *redis.Client
	reserveScript *redis.Script
	releaseScript *redis.Script
}

// NewClient creates a new Redis client with the inventory scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		reserveScript: redis.NewScript(reserveInventoryScript),
		releaseScript: redis.NewScript(releaseInventoryScript),
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func inventoryKey(ticketTypeID int64) string {
	return fmt.Sprintf("ticket_type:%d", ticketTypeID)
}

// ReserveAvailable atomically decrements a ticket type's available count.
// Returns true when the reservation fits within the remaining count.
func (c *Client) ReserveAvailable(ctx context.Context, ticketTypeID int64, quantity int) (bool, error) {
	result, err := c.reserveScript.Run(ctx, c.rdb, []string{inventoryKey(ticketTypeID)}, quantity).Result()
	if err != nil {
		return false, fmt.Errorf("reserve inventory script failed: %w", err)
	}

	code, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}
	if code == -1 {
		return false, ErrNotInitialized
	}

	return code == 1, nil
}

// ReleaseAvailable atomically increments a ticket type's available count,
// capped at the original allotment.
func (c *Client) ReleaseAvailable(ctx context.Context, ticketTypeID int64, quantity int) error {
	result, err := c.releaseScript.Run(ctx, c.rdb, []string{inventoryKey(ticketTypeID)}, quantity).Result()
	if err != nil {
		return fmt.Errorf("release inventory script failed: %w", err)
	}

	if code, ok := result.(int64); ok && code == -1 {
		return ErrNotInitialized
	}
	return nil
}

// InitInventory seeds a ticket type's counters in Redis
func (c *Client) InitInventory(ctx context.Context, ticketTypeID int64, available, quantity int) error {
	key := inventoryKey(ticketTypeID)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key, "available", available)
	pipe.HSet(ctx, key, "quantity", quantity)

	_, err := pipe.Exec(ctx)
	return err
}

// GetAvailable reads the current available count for a ticket type
func (c *Client) GetAvailable(ctx context.Context, ticketTypeID int64) (int, error) {
	result, err := c.rdb.HGet(ctx, inventoryKey(ticketTypeID), "available").Int()
	if err == redis.Nil {
		return 0, ErrNotInitialized
	}
	return result, err
}
