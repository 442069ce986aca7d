package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/presta-go-api/internal/models"
	"github.com/noah-isme/presta-go-api/internal/repository"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	server := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func rankedFixture() *fakePointsRepo {
	return &fakePointsRepo{entries: []repository.LeaderboardEntry{
		{UserID: 2, Name: "Citra", TotalPoints: 50},
		{UserID: 3, Name: "Dewi", TotalPoints: 50},
		{UserID: 1, Name: "Bram", TotalPoints: 30},
	}}
}

func TestLeaderboardServiceShapesForStudent(t *testing.T) {
	svc := NewLeaderboardService(rankedFixture(), nil, time.Minute, testLogger())

	response, err := svc.TopN(context.Background(), 10, models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, response.Entries, 3)

	first := response.Entries[0]
	require.Equal(t, 1, first.Rank)
	require.Equal(t, "Citra", first.Name)
	require.Equal(t, 50, first.Points)
	require.Nil(t, first.UserID, "students never see account ids")
	require.Empty(t, first.SubmissionsURL)
}

func TestLeaderboardServiceShapesForFaculty(t *testing.T) {
	svc := NewLeaderboardService(rankedFixture(), nil, time.Minute, testLogger())

	response, err := svc.TopN(context.Background(), 10, models.RoleFaculty)
	require.NoError(t, err)
	require.Len(t, response.Entries, 3)

	first := response.Entries[0]
	require.NotNil(t, first.UserID)
	require.Equal(t, uint(2), *first.UserID)
	require.Equal(t, "/api/v2/submissions?user_id=2", first.SubmissionsURL)
}

func TestLeaderboardServiceSharedCacheAcrossRoles(t *testing.T) {
	points := rankedFixture()
	svc := NewLeaderboardService(points, testRedis(t), time.Minute, testLogger())

	student, err := svc.TopN(context.Background(), 10, models.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, 1, points.topCalls)

	// Second call, different role, must be served from the cache yet still be
	// shaped for the requester.
	faculty, err := svc.TopN(context.Background(), 10, models.RoleFaculty)
	require.NoError(t, err)
	require.Equal(t, 1, points.topCalls, "cached payload must be reused")

	require.Nil(t, student.Entries[0].UserID)
	require.NotNil(t, faculty.Entries[0].UserID)
	require.Equal(t, student.Entries[0].Name, faculty.Entries[0].Name)
	require.Equal(t, student.Entries[0].Points, faculty.Entries[0].Points)
}

func TestLeaderboardServiceClampsLimit(t *testing.T) {
	points := rankedFixture()
	svc := NewLeaderboardService(points, nil, time.Minute, testLogger())

	response, err := svc.TopN(context.Background(), 0, models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, response.Entries, 3)

	// An absurd limit is capped rather than rejected.
	_, err = svc.TopN(context.Background(), 100000, models.RoleStudent)
	require.NoError(t, err)
}
