package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/presta-go-api/internal/dto"
	"github.com/noah-isme/presta-go-api/internal/models"
	"github.com/noah-isme/presta-go-api/internal/observability"
	"github.com/noah-isme/presta-go-api/internal/repository"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// LeaderboardService serves ranked totals with a short-lived response cache.
// The cached payload is role-neutral; shaping happens per request so student
// and faculty callers share cache entries.
type LeaderboardService interface {
	TopN(ctx context.Context, n int, requesterRole string) (dto.LeaderboardResponse, error)
}

type leaderboardService struct {
	points   repository.PointsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLeaderboardService builds the leaderboard reader.
func NewLeaderboardService(pointsRepo repository.PointsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) LeaderboardService {
	return &leaderboardService{
		points:   pointsRepo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "leaderboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *leaderboardService) TopN(ctx context.Context, n int, requesterRole string) (dto.LeaderboardResponse, error) {
	if n <= 0 {
		n = defaultLeaderboardSize
	}
	if n > maxLeaderboardSize {
		n = maxLeaderboardSize
	}

	entries, err := s.rankedEntries(ctx, n)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	return dto.LeaderboardResponse{
		Entries:     shapeForRole(entries, requesterRole),
		GeneratedAt: s.now().UTC(),
	}, nil
}

func (s *leaderboardService) rankedEntries(ctx context.Context, n int) ([]repository.LeaderboardEntry, error) {
	cacheKey := fmt.Sprintf("leaderboard:top:%d", n)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var entries []repository.LeaderboardEntry
			if unmarshalErr := json.Unmarshal([]byte(cached), &entries); unmarshalErr == nil {
				observability.LeaderboardCache().WithLabelValues("hit").Inc()
				return entries, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
		observability.LeaderboardCache().WithLabelValues("miss").Inc()
	}

	entries, err := s.points.Top(ctx, n)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
			}
		}
	}

	return entries, nil
}

func shapeForRole(entries []repository.LeaderboardEntry, role string) []dto.LeaderboardEntry {
	shaped := make([]dto.LeaderboardEntry, 0, len(entries))
	faculty := role == models.RoleFaculty

	for idx, entry := range entries {
		row := dto.LeaderboardEntry{
			Rank:   idx + 1,
			Name:   entry.Name,
			Points: entry.TotalPoints,
		}
		if faculty {
			userID := entry.UserID
			row.UserID = &userID
			row.SubmissionsURL = fmt.Sprintf("/api/v2/submissions?user_id=%d", entry.UserID)
		}
		shaped = append(shaped, row)
	}

	return shaped
}
