package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"MwFM/config"

	"github.com/go-redis/redis/v8"
)

// playsLeaderboardKey is the sorted set mirroring per-track play counts.
const playsLeaderboardKey = "charts:plays"

// ConnectRedis initializes a Redis connection.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RecordPlay bumps the track's score on the play leaderboard. The MySQL
// counter stays authoritative; this mirror exists for ops tooling.
func RecordPlay(ctx context.Context, client *redis.Client, trackID int64) error {
	err := client.ZIncrBy(ctx, playsLeaderboardKey, 1, strconv.FormatInt(trackID, 10)).Err()
	if err != nil {
		return fmt.Errorf("failed to record play for track %d: %w", trackID, err)
	}
	return nil
}

// PlayCount pairs a track ID with its mirrored play count.
type PlayCount struct {
	TrackID int64
	Plays   int64
}

// TopPlayed returns the n most played tracks according to the leaderboard.
func TopPlayed(ctx context.Context, client *redis.Client, n int64) ([]PlayCount, error) {
	entries, err := client.ZRevRangeWithScores(ctx, playsLeaderboardKey, 0, n-1).Result()
	if err != nil {
		if err == redis.Nil {
			return []PlayCount{}, nil
		}
		return nil, fmt.Errorf("failed to read play leaderboard: %w", err)
	}

	counts := make([]PlayCount, 0, len(entries))
	for _, entry := range entries {
		member, ok := entry.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		counts = append(counts, PlayCount{TrackID: id, Plays: int64(entry.Score)})
	}
	return counts, nil
}
