package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"warden/internal/domain"
)

const keyPrefix = "warden:state:"

// RedisStore keeps the shared state in redis, the one durable store both
// processes can reach. Every write is synchronously acknowledged by the
// server before the call returns.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SetBlockingEnabled(ctx context.Context, enabled bool) error {
	return s.setString(ctx, KeyBlockingEnabled, strconv.FormatBool(enabled))
}

func (s *RedisStore) BlockingEnabled(ctx context.Context) (bool, error) {
	raw, ok, err := s.getString(ctx, KeyBlockingEnabled)
	if err != nil || !ok {
		return false, err
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("state: decode %s: %w", KeyBlockingEnabled, err)
	}
	return enabled, nil
}

func (s *RedisStore) SetSessionStartTime(ctx context.Context, t time.Time) error {
	return s.setString(ctx, KeySessionStartTime, strconv.FormatInt(t.UnixMilli(), 10))
}

func (s *RedisStore) SessionStartTime(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := s.getString(ctx, KeySessionStartTime)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("state: decode %s: %w", KeySessionStartTime, err)
	}
	return time.UnixMilli(millis), true, nil
}

func (s *RedisStore) SetSessionDuration(ctx context.Context, seconds int64) error {
	return s.setString(ctx, KeySessionDuration, strconv.FormatInt(seconds, 10))
}

func (s *RedisStore) SessionDuration(ctx context.Context) (int64, error) {
	raw, ok, err := s.getString(ctx, KeySessionDuration)
	if err != nil || !ok {
		return 0, err
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("state: decode %s: %w", KeySessionDuration, err)
	}
	return seconds, nil
}

func (s *RedisStore) SetLastActiveListID(ctx context.Context, id string) error {
	return s.setString(ctx, KeyLastActiveListID, id)
}

func (s *RedisStore) LastActiveListID(ctx context.Context) (string, error) {
	raw, _, err := s.getString(ctx, KeyLastActiveListID)
	return raw, err
}

func (s *RedisStore) SetSessionID(ctx context.Context, id string) error {
	return s.setString(ctx, KeySessionID, id)
}

func (s *RedisStore) SessionID(ctx context.Context) (string, error) {
	raw, _, err := s.getString(ctx, KeySessionID)
	return raw, err
}

func (s *RedisStore) SaveSelection(ctx context.Context, selection domain.Selection, at time.Time) error {
	payload, err := json.Marshal(selection)
	if err != nil {
		return fmt.Errorf("state: encode selection: %w", err)
	}

	if err := s.setString(ctx, KeySelectionPayload, string(payload)); err != nil {
		return err
	}
	if err := s.setString(ctx, KeyHasStoredSelection, "true"); err != nil {
		return err
	}
	return s.setString(ctx, KeySelectionTimestamp, strconv.FormatInt(at.UnixMilli(), 10))
}

func (s *RedisStore) StoredSelection(ctx context.Context) (domain.Selection, bool, error) {
	var selection domain.Selection

	has, err := s.HasStoredSelection(ctx)
	if err != nil || !has {
		return selection, false, err
	}

	raw, ok, err := s.getString(ctx, KeySelectionPayload)
	if err != nil || !ok {
		return selection, false, err
	}
	if err := json.Unmarshal([]byte(raw), &selection); err != nil {
		return selection, false, fmt.Errorf("state: decode selection: %w", err)
	}
	return selection, true, nil
}

func (s *RedisStore) HasStoredSelection(ctx context.Context) (bool, error) {
	raw, ok, err := s.getString(ctx, KeyHasStoredSelection)
	if err != nil || !ok {
		return false, err
	}
	has, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("state: decode %s: %w", KeyHasStoredSelection, err)
	}
	return has, nil
}

func (s *RedisStore) SelectionTimestamp(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := s.getString(ctx, KeySelectionTimestamp)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("state: decode %s: %w", KeySelectionTimestamp, err)
	}
	return time.UnixMilli(millis), true, nil
}

func (s *RedisStore) ClearSelection(ctx context.Context) error {
	return s.client.Del(ctx,
		keyPrefix+KeySelectionPayload,
		keyPrefix+KeyHasStoredSelection,
		keyPrefix+KeySelectionTimestamp,
	).Err()
}

func (s *RedisStore) SaveStatistics(ctx context.Context, stats domain.Statistics) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("state: encode statistics: %w", err)
	}
	return s.setString(ctx, KeyStatistics, string(payload))
}

func (s *RedisStore) LoadStatistics(ctx context.Context) (domain.Statistics, error) {
	raw, ok, err := s.getString(ctx, KeyStatistics)
	if err != nil || !ok {
		return domain.NewStatistics(), err
	}

	var stats domain.Statistics
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return domain.NewStatistics(), fmt.Errorf("state: decode statistics: %w", err)
	}
	return stats, nil
}

func (s *RedisStore) SaveProfiles(ctx context.Context, profiles []domain.BlockingProfile) error {
	payload, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("state: encode profiles: %w", err)
	}
	return s.setString(ctx, KeyProfiles, string(payload))
}

func (s *RedisStore) LoadProfiles(ctx context.Context) ([]domain.BlockingProfile, error) {
	raw, ok, err := s.getString(ctx, KeyProfiles)
	if err != nil || !ok {
		return nil, err
	}

	var profiles []domain.BlockingProfile
	if err := json.Unmarshal([]byte(raw), &profiles); err != nil {
		return nil, fmt.Errorf("state: decode profiles: %w", err)
	}
	return profiles, nil
}

func (s *RedisStore) ClearAll(ctx context.Context) error {
	keys := []string{
		keyPrefix + KeyBlockingEnabled,
		keyPrefix + KeySessionStartTime,
		keyPrefix + KeySessionDuration,
		keyPrefix + KeyLastActiveListID,
		keyPrefix + KeyHasStoredSelection,
		keyPrefix + KeySelectionTimestamp,
		keyPrefix + KeySelectionPayload,
		keyPrefix + KeySessionID,
		keyPrefix + KeyStatistics,
		keyPrefix + KeyProfiles,
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) setString(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("state: set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) getString(ctx context.Context, key string) (string, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("state: get %s: %w", key, err)
	}
	return raw, true, nil
}
