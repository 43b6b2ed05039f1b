// workers/leaderboard_export.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pong-leaderboard/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/gosimple/slug"
)

// LeaderboardSource is satisfied by services.GameService.
type LeaderboardSource interface {
	GetLeaderboard(ctx context.Context) ([]models.GameRecord, error)
}

// ObjectUploader is satisfied by utils.R2Client.
type ObjectUploader interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// LeaderboardSnapshot is the exported document.
type LeaderboardSnapshot struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Games       []models.GameRecord `json:"games"`
}

type LeaderboardExporter struct {
	Source   LeaderboardSource
	Uploader ObjectUploader
	// KeyPrefix is "leaderboards/<app-slug>".
	KeyPrefix string
	Now       func() time.Time
}

func NewLeaderboardExporter(source LeaderboardSource, uploader ObjectUploader, appName string) *LeaderboardExporter {
	return &LeaderboardExporter{
		Source:    source,
		Uploader:  uploader,
		KeyPrefix: "leaderboards/" + slug.Make(appName),
		Now:       time.Now,
	}
}

// Export uploads the current leaderboard twice: as latest.json and under a
// timestamped key. It returns the public URL of latest.json.
func (e *LeaderboardExporter) Export(ctx context.Context) (string, error) {
	games, err := e.Source.GetLeaderboard(ctx)
	if err != nil {
		return "", fmt.Errorf("export leaderboard: %w", err)
	}

	now := e.Now().UTC()
	body, err := json.Marshal(LeaderboardSnapshot{GeneratedAt: now, Games: games})
	if err != nil {
		return "", fmt.Errorf("export leaderboard: encode: %w", err)
	}

	archiveKey := fmt.Sprintf("%s/%s.json", e.KeyPrefix, now.Format("20060102T150405Z"))
	if _, err := e.Uploader.PutObject(ctx, archiveKey, body, "application/json"); err != nil {
		return "", err
	}

	latestURL, err := e.Uploader.PutObject(ctx, e.KeyPrefix+"/latest.json", body, "application/json")
	if err != nil {
		return "", err
	}
	return latestURL, nil
}

// StartLeaderboardExport runs Export every interval until ctx is done.
// The returned scheduler is already started; call Shutdown on exit.
func StartLeaderboardExport(ctx context.Context, exporter *LeaderboardExporter, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			jobCtx, cancel := context.WithTimeout(ctx, interval)
			defer cancel()

			url, err := exporter.Export(jobCtx)
			if err != nil {
				log.Printf("[Export] Leaderboard export failed: %v", err)
				return
			}
			log.Printf("✅ [Export] Leaderboard exported to %s", url)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule leaderboard export: %w", err)
	}

	sched.Start()
	return sched, nil
}
