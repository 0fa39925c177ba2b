// services/scheduler.go
package services

import (
	"time"

	"match-stake-system/models"
	"match-stake-system/utils"

	"github.com/go-co-op/gocron/v2"
)

// StartRefundScheduler sweeps for staked matches whose timeout has elapsed
// and refunds them. The sweep goes through the normal Refund path, so it
// contends on the same per-match lock and status check as manual refunds —
// a concurrent manual refund and the sweeper cannot double-pay.
func (s *MatchService) StartRefundScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: refund timed-out matches
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			cutoff := time.Now().UTC().Add(-s.Timeout)
			var matches []models.Match
			err := s.DB.Where("status = ? AND stake_start_time <= ?", models.MatchStatusStaked, cutoff).
				Find(&matches).Error
			if err != nil {
				utils.Log.Errorf("[Scheduler] DB error: %v", err)
				return
			}

			for _, m := range matches {
				if _, err := s.Refund(m.ID, "scheduler"); err != nil {
					utils.Log.Warnf("[Scheduler] Failed to refund match %s: %v", m.ID, err)
				} else {
					utils.Log.Infof("✅ Auto-refunded timed-out match: %s", m.ID)
				}
			}
		}),
	)
}
