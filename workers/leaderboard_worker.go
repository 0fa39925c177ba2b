package workers

import (
	"context"
	"time"

	"match-stake-system/services"
	"match-stake-system/utils"
)

// PollEvents drives the leaderboard aggregator: an independent consumer loop
// that may lag behind the event log without ever blocking producers. The
// aggregator's watermark is the only synchronization point between the two
// sides.
func PollEvents(ctx context.Context, agg *services.AggregatorService, pollInterval time.Duration) {
	utils.Log.Info("Starting leaderboard aggregator loop...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Log.Info("Leaderboard aggregator stopped.")
			return
		case <-ticker.C:
			applied, err := agg.ProcessOnce(ctx)
			if err != nil {
				utils.Log.Errorf("❌ Error applying events: %v", err)
				// Retry same window next tick — the watermark did not advance
				// past anything unapplied.
				continue
			}
			if applied > 0 {
				utils.Log.Infof("📥 Applied %d event(s) to leaderboard.", applied)
			}
		}
	}
}
