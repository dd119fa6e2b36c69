// README: Dispatch bookkeeping backed by Redis: who was notified for which
// order, and when the first dispatch happened.
package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quickcart/internal/types"
)

const (
	dispatchKeyPrefix = "dispatch:order:%s:dispatched_at"
	notifiedKeyPrefix = "dispatch:order:%s:notified"
	// TTL for dispatch bookkeeping; a ready order either assigns or goes to
	// manual handling well within a day.
	keyTTL = 24 * time.Hour
)

type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

// RecordDispatch stamps the dispatch time and adds the recipients to the
// order's notified set.
func (s *Store) RecordDispatch(ctx context.Context, orderID types.ID, partnerIDs []types.ID) error {
	pipe := s.redis.Pipeline()
	pipe.SetNX(ctx, dispatchedAtKey(orderID), time.Now().UTC().Format(time.RFC3339), keyTTL)
	if len(partnerIDs) > 0 {
		members := make([]interface{}, len(partnerIDs))
		for i, p := range partnerIDs {
			members[i] = string(p)
		}
		key := notifiedKey(orderID)
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, keyTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// NotifiedPartners returns everyone offered the order so far, across all
// dispatch passes.
func (s *Store) NotifiedPartners(ctx context.Context, orderID types.ID) ([]types.ID, error) {
	members, err := s.redis.SMembers(ctx, notifiedKey(orderID)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(members))
	for i, m := range members {
		ids[i] = types.ID(m)
	}
	return ids, nil
}

// DispatchedAt returns when the order was first dispatched, and whether it
// has been dispatched at all.
func (s *Store) DispatchedAt(ctx context.Context, orderID types.ID) (time.Time, bool, error) {
	val, err := s.redis.Get(ctx, dispatchedAtKey(orderID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func dispatchedAtKey(orderID types.ID) string {
	return fmt.Sprintf(dispatchKeyPrefix, string(orderID))
}

func notifiedKey(orderID types.ID) string {
	return fmt.Sprintf(notifiedKeyPrefix, string(orderID))
}
