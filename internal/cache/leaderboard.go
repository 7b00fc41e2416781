// Package cache holds the Redis-backed cumulative leaderboard. It is
// derived output only: the engine writes scores through it but never
// reads leaderboard state back into session logic.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Leaderboard handles Redis ZSET operations for the per-channel
// cumulative quiz leaderboard.
type Leaderboard interface {
	AddPoints(ctx context.Context, channelID, userID string, points int) error
	Top(ctx context.Context, channelID string, limit int) ([]Entry, error)
	Rank(ctx context.Context, channelID, userID string) (int64, error)
}

// Entry is a single leaderboard row.
type Entry struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
	Rank   int    `json:"rank"`
}

type leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) Leaderboard {
	return &leaderboard{client: client}
}

func (l *leaderboard) key(channelID string) string {
	return fmt.Sprintf("channel:%s:lb", channelID)
}

func (l *leaderboard) AddPoints(ctx context.Context, channelID, userID string, points int) error {
	return l.client.ZIncrBy(ctx, l.key(channelID), float64(points), userID).Err()
}

func (l *leaderboard) Top(ctx context.Context, channelID string, limit int) ([]Entry, error) {
	results, err := l.client.ZRevRangeWithScores(ctx, l.key(channelID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(results))
	for i, z := range results {
		entries[i] = Entry{
			UserID: z.Member.(string),
			Score:  int(z.Score),
			Rank:   i + 1,
		}
	}
	return entries, nil
}

func (l *leaderboard) Rank(ctx context.Context, channelID, userID string) (int64, error) {
	rank, err := l.client.ZRevRank(ctx, l.key(channelID), userID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
