// Package service runs the scheduled library sweep: every cron tick it scans
// the configured media directories and enqueues pipeline jobs for videos that
// still lack a target-language subtitle.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/jmorelli/video-sub-pipeline/internal/jobs"
	"github.com/jmorelli/video-sub-pipeline/internal/library"
	"github.com/jmorelli/video-sub-pipeline/pkg/file"
	"github.com/jmorelli/video-sub-pipeline/pkg/icron"
	"github.com/jmorelli/video-sub-pipeline/pkg/log"
)

// Enqueuer is the slice of the job queue the sweeper needs.
type Enqueuer interface {
	Enqueue(req jobs.EnqueueRequest) (*jobs.PipelineJob, bool)
}

type Sweeper struct {
	scanner        *library.Scanner
	queue          Enqueuer
	mediaDirs      []string
	sourceLanguage string
	cronExpr       string
	cron           *cron.Cron
	logger         *log.Logger

	group singleflight.Group

	mu              sync.Mutex
	lastTriggerTime time.Time
}

func NewSweeper(scanner *library.Scanner, queue Enqueuer, mediaDirs []string, sourceLanguage, cronExpr string, c *cron.Cron, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Sweeper{
		scanner:        scanner,
		queue:          queue,
		mediaDirs:      mediaDirs,
		sourceLanguage: sourceLanguage,
		cronExpr:       cronExpr,
		cron:           c,
		logger:         logger,
	}
}

// Schedule registers the sweep on the cron. Overlapping ticks collapse into
// one run via singleflight.
func (s *Sweeper) Schedule(ctx context.Context) error {
	runFunc := func() {
		_, _, _ = s.group.Do("sweep", func() (any, error) {
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("Library sweep failed: %v", err)
			}
			return nil, nil
		})
	}
	_, err := s.cron.AddFunc(s.cronExpr, runFunc)
	return err
}

// RunOnce performs a single sweep and returns how many jobs were enqueued.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	startTime := s.startTime()
	s.logger.Info("Sweeping for videos modified after %v", startTime)

	recent, err := s.recentPaths(startTime)
	if err != nil {
		return 0, err
	}

	s.scanner.Invalidate()
	videos, err := s.scanner.Processable(ctx)
	if err != nil {
		return 0, err
	}

	targetLanguage := s.scanner.TargetLanguage()
	enqueued := 0
	for _, video := range videos {
		if !recent[video.Path] {
			continue
		}
		job, created := s.queue.Enqueue(jobs.EnqueueRequest{
			Source:    "cron",
			DedupeKey: video.Path + "|" + targetLanguage,
			Payload: jobs.JobPayload{
				VideoPath:      video.Path,
				SourceLanguage: s.sourceLanguage,
				TargetLanguage: targetLanguage,
			},
		})
		if created {
			s.logger.Info("Enqueued %s as %s", video.Path, job.ID)
			enqueued++
		}
	}

	s.mu.Lock()
	s.lastTriggerTime = time.Now()
	s.mu.Unlock()

	return enqueued, nil
}

// recentPaths collects the files under the media directories modified after
// startTime.
func (s *Sweeper) recentPaths(startTime time.Time) (map[string]bool, error) {
	ret := make(map[string]bool)
	for _, dir := range s.mediaDirs {
		paths, err := file.FindRecentAfter(dir, startTime)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			ret[p] = true
		}
	}
	return ret, nil
}

// startTime decides how far back a sweep looks. The first run reaches back a
// week; later runs pick up from the previous trigger, derived from the cron
// expression when the in-memory timestamp is missing.
func (s *Sweeper) startTime() time.Time {
	s.mu.Lock()
	last := s.lastTriggerTime
	s.mu.Unlock()
	if !last.IsZero() {
		return last
	}

	info, err := icron.GetTriggerInfo(s.cronExpr, time.Now())
	if err != nil || info.Last.IsZero() {
		return time.Now().Add(-24 * 7 * time.Hour)
	}
	if time.Now().Add(-24 * time.Hour).Before(info.Last) {
		return time.Now().Add(-24 * 7 * time.Hour)
	}
	return info.Last
}
