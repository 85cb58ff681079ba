package poller

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/tessario/messis/internal/models"
)

const (
	// ShortInterval is used while the previous snapshot shows activity.
	ShortInterval = 2 * time.Second

	// LongInterval is used while the previous snapshot is idle.
	LongInterval = 5 * time.Second
)

// FetchFunc retrieves the current value of one collection.
type FetchFunc func(ctx context.Context) (interface{}, error)

// ActivityFunc inspects a committed snapshot value and reports whether the
// collection is active. Active collections poll at the short interval.
type ActivityFunc func(data interface{}) bool

// CommitFunc observes every committed snapshot (e.g. to persist it).
type CommitFunc func(snap Snapshot)

// Poller runs one polling loop per watched collection. Loops stop when the
// watch context is cancelled; no timer outlives its consumer.
type Poller struct {
	store    *Store
	logger   arbor.ILogger
	onCommit CommitFunc

	mu    sync.Mutex
	pokes map[Collection]chan struct{}
	wg    sync.WaitGroup
}

// New creates a poller over the given store.
func New(store *Store, logger arbor.ILogger) *Poller {
	return &Poller{
		store:  store,
		logger: logger,
		pokes:  make(map[Collection]chan struct{}),
	}
}

// OnCommit registers an observer called after every committed snapshot.
func (p *Poller) OnCommit(fn CommitFunc) {
	p.onCommit = fn
}

// Watch starts the polling loop for one collection. The loop fetches
// immediately, then re-fetches at an interval recomputed after every fetch
// from the activity of the snapshot it just committed.
func (p *Poller) Watch(ctx context.Context, col Collection, fetch FetchFunc, active ActivityFunc) {
	p.mu.Lock()
	poke, ok := p.pokes[col]
	if !ok {
		poke = make(chan struct{}, 1)
		p.pokes[col] = poke
	}
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loop(ctx, col, fetch, active, poke)
	}()
}

// Poke forces an immediate refetch of a collection. Used by the command
// dispatcher to reconcile invalidated collections without waiting out the
// current interval.
func (p *Poller) Poke(col Collection) {
	p.mu.Lock()
	poke, ok := p.pokes[col]
	p.mu.Unlock()
	if !ok {
		return
	}
	select {
	case poke <- struct{}{}:
	default: // A refetch is already queued
	}
}

// Wait blocks until every polling loop has exited.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context, col Collection, fetch FetchFunc, active ActivityFunc, poke chan struct{}) {
	interval := p.fetchOnce(ctx, col, fetch, active)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug().Str("collection", string(col)).Msg("Polling stopped")
			return
		case <-poke:
		case <-timer.C:
		}

		interval = p.fetchOnce(ctx, col, fetch, active)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(interval)
	}
}

// fetchOnce performs one fetch cycle and returns the next interval, derived
// from the snapshot this cycle produced (or from the retained one on error).
func (p *Poller) fetchOnce(ctx context.Context, col Collection, fetch FetchFunc, active ActivityFunc) time.Duration {
	generation := p.store.NextGeneration(col)

	data, err := fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn().Err(err).Str("collection", string(col)).Msg("Snapshot fetch failed, keeping previous snapshot")
		}
		p.store.MarkStale(col, err.Error())
		return p.intervalFor(col, active)
	}

	snap := Snapshot{
		Collection: col,
		Generation: generation,
		FetchedAt:  time.Now(),
		Data:       data,
	}
	if p.store.Commit(snap) {
		if p.onCommit != nil {
			p.onCommit(snap)
		}
	} else {
		p.logger.Debug().
			Str("collection", string(col)).
			Int64("generation", int64(generation)).
			Msg("Discarded stale snapshot response")
	}

	return p.intervalFor(col, active)
}

func (p *Poller) intervalFor(col Collection, active ActivityFunc) time.Duration {
	snap, ok := p.store.Get(col)
	if ok && active != nil && active(snap.Data) {
		return ShortInterval
	}
	return LongInterval
}

// JobsActivity reports whether a jobs snapshot contains a running job.
func JobsActivity(data interface{}) bool {
	jobs, ok := data.([]models.Job)
	if !ok {
		return false
	}
	for _, job := range jobs {
		if job.Status == models.JobStatusRunning {
			return true
		}
	}
	return false
}

// AnalysisActivity reports whether an analysis snapshot has a run still in
// flight.
func AnalysisActivity(data interface{}) bool {
	analysis, ok := data.(*models.EditionAnalysis)
	if !ok || analysis == nil || analysis.Run == nil {
		return false
	}
	return analysis.Run.Status == models.RunStatusPending || analysis.Run.Status == models.RunStatusRunning
}
