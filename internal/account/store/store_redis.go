package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"storefront/internal/account/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

const redisKeyPrefix = "account:"

// Redis keeps each cart as two hashes (quantities and line snapshots, both
// keyed by "<product>:<variant>") and each wishlist as one hash of entries.
// Quantities use HINCRBY so concurrent adds never lose an increment.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func cartQtyKey(userID id.UserID) string   { return redisKeyPrefix + userID.String() + ":cart:qty" }
func cartLinesKey(userID id.UserID) string { return redisKeyPrefix + userID.String() + ":cart:lines" }
func wishlistKey(userID id.UserID) string  { return redisKeyPrefix + userID.String() + ":wishlist" }

func (s *Redis) ListCart(ctx context.Context, userID id.UserID) ([]models.CartLine, error) {
	qtys, err := s.client.HGetAll(ctx, cartQtyKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list cart quantities: %w", err)
	}
	snapshots, err := s.client.HGetAll(ctx, cartLinesKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}

	out := make([]models.CartLine, 0, len(qtys))
	for field, raw := range snapshots {
		var line models.CartLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, fmt.Errorf("cart line %s: %w", field, sentinel.ErrCorrupt)
		}
		qty, err := strconv.Atoi(qtys[field])
		if err != nil || qty <= 0 {
			continue
		}
		line.Quantity = qty
		out = append(out, line)
	}
	sortCart(out)
	return out, nil
}

func (s *Redis) AddToCart(ctx context.Context, userID id.UserID, line models.CartLine) (models.CartLine, error) {
	if line.Quantity <= 0 {
		return models.CartLine{}, fmt.Errorf("quantity %d: %w", line.Quantity, sentinel.ErrInvalidState)
	}
	field := line.Key().String()
	snapshot := line
	snapshot.Quantity = 0
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return models.CartLine{}, fmt.Errorf("encode cart line: %w", err)
	}

	var (
		incr *redis.IntCmd
		get  *redis.StringCmd
	)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, cartLinesKey(userID), field, raw)
		incr = pipe.HIncrBy(ctx, cartQtyKey(userID), field, int64(line.Quantity))
		get = pipe.HGet(ctx, cartLinesKey(userID), field)
		return nil
	})
	if err != nil {
		return models.CartLine{}, fmt.Errorf("add cart line: %w", err)
	}

	var stored models.CartLine
	if err := json.Unmarshal([]byte(get.Val()), &stored); err != nil {
		return models.CartLine{}, fmt.Errorf("cart line %s: %w", field, sentinel.ErrCorrupt)
	}
	stored.Quantity = int(incr.Val())
	stored.UpdatedAt = line.UpdatedAt
	return stored, nil
}

func (s *Redis) ClearCart(ctx context.Context, userID id.UserID) error {
	if err := s.client.Del(ctx, cartQtyKey(userID), cartLinesKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *Redis) ListWishlist(ctx context.Context, userID id.UserID) ([]models.WishlistEntry, error) {
	all, err := s.client.HGetAll(ctx, wishlistKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	out := make([]models.WishlistEntry, 0, len(all))
	for field, raw := range all {
		var e models.WishlistEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("wishlist entry %s: %w", field, sentinel.ErrCorrupt)
		}
		out = append(out, e)
	}
	sortWishlist(out)
	return out, nil
}

func (s *Redis) AddToWishlist(ctx context.Context, userID id.UserID, entry models.WishlistEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode wishlist entry: %w", err)
	}
	added, err := s.client.HSetNX(ctx, wishlistKey(userID), entry.Key().String(), raw).Result()
	if err != nil {
		return fmt.Errorf("add wishlist entry: %w", err)
	}
	if !added {
		return fmt.Errorf("wishlist entry %s: %w", entry.Key(), sentinel.ErrConflict)
	}
	return nil
}

func (s *Redis) RemoveFromWishlist(ctx context.Context, userID id.UserID, key id.LineKey) error {
	n, err := s.client.HDel(ctx, wishlistKey(userID), key.String()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("remove wishlist entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("wishlist entry %s: %w", key, sentinel.ErrNotFound)
	}
	return nil
}
