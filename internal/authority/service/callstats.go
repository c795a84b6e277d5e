package service

import (
	"context"
)

type callStatsKey struct{}

// callStats counts attempts made against the authority within a single
// adapter call. The failover adapter seeds it into the context and the retry
// decorator increments it once per network attempt, across both regions, so
// CallInfo.Attempts reflects the true cost of the call.
type callStats struct {
	attempts int
}

func withCallStats(ctx context.Context) (context.Context, *callStats) {
	stats := &callStats{}
	return context.WithValue(ctx, callStatsKey{}, stats), stats
}

func recordAttempt(ctx context.Context) {
	if stats, ok := ctx.Value(callStatsKey{}).(*callStats); ok {
		stats.attempts++
	}
}
