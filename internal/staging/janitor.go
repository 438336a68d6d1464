package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Janitor periodically removes staged files older than maxAge. Requests
// always release their own files; the janitor only collects what a crashed
// process left behind.
type Janitor struct {
	dir       string
	maxAge    time.Duration
	log       *zap.Logger
	scheduler gocron.Scheduler
}

// ErrSharedDir is returned when the janitor is pointed at the OS temp dir
// rather than a directory of its own.
var ErrSharedDir = errors.New("staging janitor needs a dedicated directory")

// NewJanitor schedules a sweep of dir every interval. maxAge must exceed the
// longest time a request can hold a staged file.
func NewJanitor(dir string, maxAge, interval time.Duration, log *zap.Logger) (*Janitor, error) {
	if dir == "" || filepath.Clean(dir) == filepath.Clean(os.TempDir()) {
		return nil, ErrSharedDir
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	j := &Janitor{dir: dir, maxAge: maxAge, log: log.Named("staging-janitor")}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			removed, err := j.Sweep(time.Now())
			if err != nil {
				j.log.Warn("sweep failed", zap.Error(err))
				return
			}
			if removed > 0 {
				j.log.Info("removed stale staged files", zap.Int("count", removed))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}
	j.scheduler = scheduler
	return j, nil
}

// Start begins running scheduled sweeps.
func (j *Janitor) Start() {
	j.scheduler.Start()
}

// Shutdown stops the scheduler and waits for a running sweep to finish.
func (j *Janitor) Shutdown() error {
	return j.scheduler.Shutdown()
}

// Sweep removes staged files whose modification time is before now-maxAge
// and returns how many were removed.
func (j *Janitor) Sweep(now time.Time) (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	cutoff := now.Add(-j.maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), Prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		f := &File{Path: filepath.Join(j.dir, e.Name())}
		if err := f.Release(); err != nil {
			j.log.Warn("remove stale staged file", zap.String("path", f.Path), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
