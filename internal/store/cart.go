package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RainersCode/honey-sub001/internal/database"
	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/redis/go-redis/v9"
)

// Carts live in Redis under cart:<userID> as a JSON blob with a
// 30-day TTL. The cart is externally-owned session state: nothing here
// survives checkout except the snapshot frozen into the order.
type RedisCarts struct{}

const cartTTL = 30 * 24 * time.Hour

func NewCarts() *RedisCarts {
	return &RedisCarts{}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (c *RedisCarts) Get(ctx context.Context, userID string) ([]models.CartItem, error) {
	data, err := database.Redis.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *RedisCarts) Save(ctx context.Context, userID string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return database.Redis.Set(ctx, cartKey(userID), data, cartTTL).Err()
}

func (c *RedisCarts) Clear(ctx context.Context, userID string) error {
	return database.Redis.Del(ctx, cartKey(userID)).Err()
}
