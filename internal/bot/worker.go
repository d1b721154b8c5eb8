package bot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultWorkerIdleTimeout is how long a user's worker waits for new updates
// before it exits and is removed from the pool.
const DefaultWorkerIdleTimeout = 10 * time.Minute

// job is an update waiting in a user's queue.
type job struct {
	ctx    context.Context
	update Update
	done   chan struct{} // closed when processing is complete (for synchronous dispatch)
}

func (j job) finish() {
	if j.done != nil {
		close(j.done)
	}
}

// updateHandler processes updates taken from a worker's queue.
type updateHandler interface {
	processUpdate(ctx context.Context, u Update)
}

// userWorker processes the updates of one user sequentially, in arrival
// order. Different users have different workers and run concurrently.
// The queue is unbounded so queueing never blocks the caller.
type userWorker struct {
	userID  int64
	handler updateHandler

	mu      sync.Mutex
	queue   []job
	stopped bool // no new jobs are accepted

	wake     chan struct{} // signalled when a job is queued
	quit     chan struct{} // closed by stop
	quitOnce sync.Once
	exited   chan struct{} // closed when run returns

	idleTimeout time.Duration
	// retire is asked to remove an idle worker. It returns true if the
	// worker was retired and must exit.
	retire func(w *userWorker) bool
}

func newUserWorker(userID int64, handler updateHandler) *userWorker {
	return &userWorker{
		userID:      userID,
		handler:     handler,
		wake:        make(chan struct{}, 1),
		quit:        make(chan struct{}),
		exited:      make(chan struct{}),
		idleTimeout: DefaultWorkerIdleTimeout,
	}
}

// start launches the worker goroutine.
func (w *userWorker) start() {
	go w.run()
}

func (w *userWorker) run() {
	defer close(w.exited)

	idle := time.NewTimer(w.idleTimeout)
	defer idle.Stop()

	for {
		if j, ok := w.next(); ok {
			w.process(j)
			continue
		}

		idle.Reset(w.idleTimeout)
		select {
		case <-w.wake:
		case <-w.quit:
			// stop has closed the queue; finish what was already accepted
			for j, ok := w.next(); ok; j, ok = w.next() {
				w.process(j)
			}
			return
		case <-idle.C:
			if w.retire != nil && w.retire(w) {
				log.Debug().Int64("userId", w.userID).Msg("retired idle user worker")
				return
			}
		}
	}
}

func (w *userWorker) next() (job, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return job{}, false
	}
	j := w.queue[0]
	w.queue[0] = job{}
	w.queue = w.queue[1:]
	return j, true
}

func (w *userWorker) process(j job) {
	defer func() {
		// Recover from any panics to keep the worker running
		if r := recover(); r != nil {
			log.Error().
				Int64("userId", w.userID).
				Interface("panic", r).
				Msg("recovered from panic in user worker")
		}
		j.finish()
	}()

	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	w.handler.processUpdate(ctx, j.update)
}

// send queues a job without blocking. It returns false, and completes the
// job unprocessed, if the worker no longer accepts jobs.
func (w *userWorker) send(j job) bool {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		j.finish()
		return false
	}
	w.queue = append(w.queue, j)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

// sendSync queues a job and waits until it has been processed.
func (w *userWorker) sendSync(j job) bool {
	j.done = make(chan struct{})
	ok := w.send(j)
	<-j.done
	return ok
}

// stop closes the queue, lets the worker finish the jobs already queued
// and waits for it to exit.
func (w *userWorker) stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	w.quitOnce.Do(func() { close(w.quit) })
	<-w.exited
}

// workerPool owns one worker per active user.
type workerPool struct {
	handler     updateHandler
	idleTimeout time.Duration

	mu      sync.Mutex
	workers map[int64]*userWorker
	closed  bool
}

func newWorkerPool(handler updateHandler) *workerPool {
	return &workerPool{
		handler:     handler,
		idleTimeout: DefaultWorkerIdleTimeout,
		workers:     make(map[int64]*userWorker),
	}
}

// dispatch queues the job on the user's worker, starting one if needed.
// It never blocks on other jobs. It returns false after shutdown.
func (p *workerPool) dispatch(userID int64, j job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		j.finish()
		return false
	}
	w, ok := p.workers[userID]
	if !ok {
		w = newUserWorker(userID, p.handler)
		w.idleTimeout = p.idleTimeout
		w.retire = p.retire
		w.start()
		p.workers[userID] = w
	}
	return w.send(j)
}

// retire removes an idle worker. Holding the pool lock keeps dispatch from
// queueing on a worker that is about to exit.
func (p *workerPool) retire(w *userWorker) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || len(w.queue) > 0 {
		return false
	}
	w.stopped = true
	if p.workers[w.userID] == w {
		delete(p.workers, w.userID)
	}
	return true
}

// size returns the number of live workers.
func (p *workerPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// shutdown stops all workers after they finish their queued jobs.
func (p *workerPool) shutdown() {
	p.mu.Lock()
	p.closed = true
	workers := make([]*userWorker, 0, len(p.workers))
	for _, w := range p.workers {
		workers = append(workers, w)
	}
	p.mu.Unlock()

	// Stop all workers (outside the lock so retiring workers can finish)
	for _, w := range workers {
		w.stop()
	}
	log.Info().Int("count", len(workers)).Msg("stopped all user workers")
}
