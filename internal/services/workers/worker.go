package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/killallgit/castsync/internal/models"
	"github.com/killallgit/castsync/internal/pocketcasts"
)

// ListSyncer fetches one list and stores its episodes
type ListSyncer interface {
	Sync(ctx context.Context, list pocketcasts.List) ([]*models.Episode, error)
}

// Result is the outcome of the last pass over one list
type Result struct {
	List     pocketcasts.List
	Episodes int
	Err      error
	At       time.Time
}

// SyncWorker keeps lists in the local library fresh by syncing them on an
// interval. A pass runs immediately on Start.
type SyncWorker struct {
	syncer   ListSyncer
	lists    []pocketcasts.List
	interval time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.RWMutex
	started bool
	last    map[pocketcasts.List]Result
}

// NewSyncWorker validates the list names and creates a worker
func NewSyncWorker(syncer ListSyncer, names []string, interval time.Duration) (*SyncWorker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sync interval must be positive, got %v", interval)
	}
	if len(names) == 0 {
		return nil, errors.New("no lists to sync")
	}

	lists := make([]pocketcasts.List, 0, len(names))
	for _, name := range names {
		l, err := pocketcasts.ParseList(name)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}

	return &SyncWorker{
		syncer:   syncer,
		lists:    lists,
		interval: interval,
		stopChan: make(chan struct{}),
		last:     make(map[pocketcasts.List]Result),
	}, nil
}

// Start runs the worker in a goroutine
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return errors.New("sync worker already started")
	}
	w.started = true

	w.wg.Add(1)
	go w.run(ctx)
	return nil
}

// Stop stops the worker and waits for a running pass to finish
func (w *SyncWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
}

// Last returns the most recent result for every list synced so far
func (w *SyncWorker) Last() []Result {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Result, 0, len(w.last))
	for _, l := range w.lists {
		if r, ok := w.last[l]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (w *SyncWorker) run(ctx context.Context) {
	defer w.wg.Done()

	log := logrus.WithFields(logrus.Fields{"lists": w.lists, "interval": w.interval})
	log.Info("sync worker starting")
	defer log.Info("sync worker stopped")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.syncAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.syncAll(ctx)
		}
	}
}

// syncAll makes one pass; a failing list does not stop the others, but Stop
// or a cancelled ctx ends the pass before the next list
func (w *SyncWorker) syncAll(ctx context.Context) {
	for _, l := range w.lists {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		default:
		}

		eps, err := w.syncer.Sync(ctx, l)
		result := Result{List: l, Episodes: len(eps), Err: err, At: time.Now()}

		if err != nil {
			logrus.WithError(err).WithField("list", l).Warn("background sync failed")
		} else {
			logrus.WithFields(logrus.Fields{"list": l, "episodes": result.Episodes}).Debug("background sync done")
		}

		w.mu.Lock()
		w.last[l] = result
		w.mu.Unlock()
	}
}
