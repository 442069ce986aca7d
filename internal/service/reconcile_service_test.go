package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReconcileServiceReportsCorrections(t *testing.T) {
	points := &fakePointsRepo{rebuilt: 3}
	svc := NewReconcileService(points, testLogger())

	result, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, result.Corrected)
	require.False(t, result.FinishedAt.IsZero())
	require.Equal(t, 1, points.rebuildCalls)
}

func TestReconcileServiceConsistentCache(t *testing.T) {
	points := &fakePointsRepo{}
	svc := NewReconcileService(points, testLogger())

	result, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	require.Zero(t, result.Corrected)
}

func TestReconcileServiceRebuildFailure(t *testing.T) {
	points := &fakePointsRepo{rebuildErr: errors.New("database gone")}
	svc := NewReconcileService(points, testLogger())

	_, err := svc.Reconcile(context.Background())
	require.Error(t, err)
}

func TestReconcileServiceRunStopsOnCancel(t *testing.T) {
	points := &fakePointsRepo{}
	svc := NewReconcileService(points, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		svc.Run(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop on context cancellation")
	}
}
