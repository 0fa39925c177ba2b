package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"match-stake-system/models"
	"match-stake-system/services"
	"match-stake-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const archiveConsumer = "archive"

// EventArchiveClient exports newly appended events to R2 as JSON batches for
// offline audit. It keeps its own cursor row and advances it only after a
// successful upload, so a failed upload retries the same window next tick.
type EventArchiveClient struct {
	DB        *gorm.DB
	Events    *services.EventService
	BatchSize int
}

func NewEventArchiveClient(db *gorm.DB, events *services.EventService) *EventArchiveClient {
	return &EventArchiveClient{DB: db, Events: events, BatchSize: 500}
}

func (c *EventArchiveClient) archiveOnce(ctx context.Context) (int, error) {
	cursor := &models.AggregatorCursor{}
	if err := c.DB.Where(models.AggregatorCursor{Consumer: archiveConsumer}).
		FirstOrCreate(cursor).Error; err != nil {
		return 0, err
	}

	events, err := c.Events.ReadFrom(cursor.LastApplied+1, c.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event batch: %w", err)
	}

	first := events[0].Seq
	last := events[len(events)-1].Seq
	key := fmt.Sprintf("events/%012d-%012d-%s.json", first, last, uuid.NewString()[:8])
	if err := utils.UploadBytesToR2(ctx, key, payload, "application/json"); err != nil {
		return 0, err
	}

	cursor.LastApplied = last
	if err := c.DB.Save(cursor).Error; err != nil {
		return 0, err
	}
	return len(events), nil
}

// PollArchive runs the archive export loop until ctx is cancelled.
func PollArchive(ctx context.Context, client *EventArchiveClient, pollInterval time.Duration) {
	utils.Log.Info("Starting event archive worker (R2-backed)...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Log.Info("Event archive worker stopped.")
			return
		case <-ticker.C:
			count, err := client.archiveOnce(ctx)
			if err != nil {
				utils.Log.Errorf("❌ Failed to archive events: %v", err)
				continue
			}
			if count > 0 {
				utils.Log.Infof("🗄️ Archived %d event(s) to R2.", count)
			}
		}
	}
}
