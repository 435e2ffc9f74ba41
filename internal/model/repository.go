package model

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/go-redis/redis/v7"
)

// Repository provides redis-backed settings and mute history
type Repository struct {
	Client *redis.Client
}

var (
	_ Settings         = (*Repository)(nil)
	_ MuteHistoryStore = (*Repository)(nil)
)

// NewRepository provides Repository instance
func NewRepository(client *redis.Client) *Repository {
	return &Repository{
		Client: client,
	}
}

// ConfigSet sets config value for given guild
func (repo *Repository) ConfigSet(guildID, scope, key, value string) error {
	fullkey := fmt.Sprintf("%s.%s.%s", guildID, scope, key)
	cmd := repo.Client.Set(fullkey, value, 0)

	return cmd.Err()
}

// ConfigGet returns config value for given guild
func (repo *Repository) ConfigGet(guildID, scope, key string) (s string, err error) {
	fullkey := fmt.Sprintf("%s.%s.%s", guildID, scope, key)
	s, err = repo.Client.Get(fullkey).Result()

	if err == redis.Nil {
		err = nil
	}

	return
}

// ConfigDel removes config value for given guild
func (repo *Repository) ConfigDel(guildID, scope, key string) error {
	fullkey := fmt.Sprintf("%s.%s.%s", guildID, scope, key)

	return repo.Client.Del(fullkey).Err()
}

// ConfigList returns config values of given guild matching mask, mute lists are excluded
func (repo *Repository) ConfigList(guildID, mask string) (map[string]string, error) {
	prefix := guildID + "."

	keys, err := repo.Client.Keys(prefix + "*" + mask).Result()
	if err != nil {
		return nil, err
	}

	res := make(map[string]string, len(keys))

	for _, k := range keys {
		if strings.HasPrefix(k, prefix+muteScope+".") {
			continue
		}

		v, err := repo.Client.Get(k).Result()
		if err == redis.Nil {
			continue
		}

		if err != nil {
			return nil, err
		}

		res[strings.TrimPrefix(k, prefix)] = v
	}

	return res, nil
}

const muteScope = "mute"

func muteKey(guildID, userID string) string {
	return fmt.Sprintf("%s.%s.%s", guildID, muteScope, userID)
}

// AppendMute pushes reason to the end of user's mute list
func (repo *Repository) AppendMute(ctx context.Context, guildID, userID, reason string) error {
	return repo.Client.WithContext(ctx).RPush(muteKey(guildID, userID), reason).Err()
}

// MuteHistory returns up to limit most recent reasons in chronological order
func (repo *Repository) MuteHistory(ctx context.Context, guildID, userID string, limit int) ([]string, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	list, err := repo.Client.WithContext(ctx).LRange(muteKey(guildID, userID), start, -1).Result()
	if err == redis.Nil {
		err = nil
	}

	if err != nil {
		return nil, err
	}

	if len(list) == 0 {
		return nil, ErrRecordNotFound
	}

	return list, nil
}
