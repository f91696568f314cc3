package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"cow-notifier/pkg/news"
)

// RedisStore is the subscription and alias store. The pipeline only reads
// from it; writes happen through the command worker.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func categoryKey(categoryID int) string {
	return fmt.Sprintf("notify:category:%d:chats", categoryID)
}

func chatKey(chatID int64) string {
	return fmt.Sprintf("notify:chat:%d:categories", chatID)
}

func plusOneKey(chatID int64) string {
	return fmt.Sprintf("notify:chat:%d:noplusone", chatID)
}

func aliasKey(alias string) string {
	return fmt.Sprintf("notify:alias:%s:chats", alias)
}

// Subscribe adds a chat to a category. Reports whether the subscription
// is new.
func (s *RedisStore) Subscribe(ctx context.Context, chatID int64, categoryID int) (bool, error) {
	added, err := s.rdb.SAdd(ctx, categoryKey(categoryID), chatID).Result()
	if err != nil {
		return false, err
	}
	if err := s.rdb.SAdd(ctx, chatKey(chatID), categoryID).Err(); err != nil {
		return false, err
	}
	return added > 0, nil
}

// Unsubscribe removes a chat from a category. Reports whether anything
// was removed.
func (s *RedisStore) Unsubscribe(ctx context.Context, chatID int64, categoryID int) (bool, error) {
	removed, err := s.rdb.SRem(ctx, categoryKey(categoryID), chatID).Result()
	if err != nil {
		return false, err
	}
	if err := s.rdb.SRem(ctx, chatKey(chatID), categoryID).Err(); err != nil {
		return false, err
	}
	return removed > 0, nil
}

// Subscriptions lists the category ids a chat follows.
func (s *RedisStore) Subscriptions(ctx context.Context, chatID int64) ([]int, error) {
	members, err := s.rdb.SMembers(ctx, chatKey(chatID)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Recipients lists the chats subscribed to a category together with their
// plus-one preference.
func (s *RedisStore) Recipients(ctx context.Context, categoryID int) ([]news.Recipient, error) {
	members, err := s.rdb.SMembers(ctx, categoryKey(categoryID)).Result()
	if err != nil {
		return nil, err
	}
	recipients := make([]news.Recipient, 0, len(members))
	for _, m := range members {
		chatID, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		noPlusOne, err := s.rdb.Get(ctx, plusOneKey(chatID)).Result()
		if err != nil && err != redis.Nil {
			return nil, err
		}
		recipients = append(recipients, news.Recipient{
			ChatID:    chatID,
			NoPlusOne: noPlusOne == "1",
		})
	}
	return recipients, nil
}

// SetPlusOneFilter records whether a chat wants plus-one posts suppressed.
func (s *RedisStore) SetPlusOneFilter(ctx context.Context, chatID int64, suppress bool) error {
	if suppress {
		return s.rdb.Set(ctx, plusOneKey(chatID), "1", 0).Err()
	}
	return s.rdb.Del(ctx, plusOneKey(chatID)).Err()
}

// AddAlias registers a normalized alias for a chat.
func (s *RedisStore) AddAlias(ctx context.Context, chatID int64, alias string) error {
	return s.rdb.SAdd(ctx, aliasKey(alias), chatID).Err()
}

// RemoveAlias drops a chat's registration of an alias.
func (s *RedisStore) RemoveAlias(ctx context.Context, chatID int64, alias string) error {
	return s.rdb.SRem(ctx, aliasKey(alias), chatID).Err()
}

// AliasRecipients resolves a normalized alias to its registered chats.
func (s *RedisStore) AliasRecipients(ctx context.Context, alias string) ([]int64, error) {
	members, err := s.rdb.SMembers(ctx, aliasKey(alias)).Result()
	if err != nil {
		return nil, err
	}
	chats := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		chats = append(chats, id)
	}
	return chats, nil
}
