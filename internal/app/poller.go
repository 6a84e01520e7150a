package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/webprint/platen/internal/registry"
	"github.com/webprint/platen/internal/state"
	"github.com/webprint/platen/internal/webprint"
)

const defaultPollInterval = 5 * time.Second

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, fetcher webprint.StatusFetcher, reg *registry.Registry, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			refresh(ctx, store, fetcher, reg, log)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// refresh runs one poll cycle. The queue status and the per-task detail
// fetches are independent: either side failing leaves the other's data
// in the store untouched.
func refresh(ctx context.Context, store *state.Store, fetcher webprint.StatusFetcher, reg *registry.Registry, log zerolog.Logger) {
	refreshQueue(ctx, store, fetcher, log)
	refreshTasks(ctx, store, fetcher, reg, log)
}

func refreshQueue(ctx context.Context, store *state.Store, fetcher webprint.StatusFetcher, log zerolog.Logger) {
	queue, err := fetcher.QueueStatus(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("queue status poll failed")
	}
	store.SetQueue(queue, err)
}

func refreshTasks(ctx context.Context, store *state.Store, fetcher webprint.StatusFetcher, reg *registry.Registry, log zerolog.Logger) {
	infos := reg.Tasks()
	if len(infos) == 0 {
		if ctx.Err() != nil {
			return
		}
		store.SetTasks(nil, nil)
		return
	}

	// Fetch every tracked task concurrently. A single task failing (it
	// may have aged out server-side) must not hide the others, so
	// failures are logged and the task is simply skipped this cycle.
	var (
		mu      sync.Mutex
		results = make(map[string]*webprint.TaskStatus, len(infos))
		wg      sync.WaitGroup
	)
	for _, info := range infos {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			status, err := fetcher.TaskStatus(ctx, id)
			if err != nil {
				log.Debug().Err(err).Str("task_id", id).Msg("task status fetch failed")
				return
			}
			mu.Lock()
			results[id] = status
			mu.Unlock()
		}(info.TaskID)
	}
	wg.Wait()

	// Teardown race: results that arrive after cancellation are dropped
	// rather than written into the store.
	if ctx.Err() != nil {
		return
	}

	views := make([]state.TaskView, 0, len(results))
	for _, info := range infos {
		status, ok := results[info.TaskID]
		if !ok || status == nil {
			continue
		}
		views = append(views, state.TaskView{
			TaskStatus:  *status,
			FileName:    info.FileName,
			PrinterName: info.PrinterName,
		})
	}
	store.SetTasks(views, nil)
}
