// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned by Submit when the shard's queue is saturated.
var ErrQueueFull = errors.New("worker queue full")

type Task func(ctx context.Context) error

// Pool runs tasks on a fixed set of shards. Tasks submitted with the same key
// always land on the same shard and therefore run one at a time, in order.
type Pool struct {
	wg     sync.WaitGroup
	shards []chan Task
	quit   chan struct{}
	once   sync.Once
	log    *zerolog.Logger
}

func NewPool(workers, queueSize int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 32
	}
	p := &Pool{shards: make([]chan Task, workers), quit: make(chan struct{}), log: logger}
	for i := range p.shards {
		p.shards[i] = make(chan Task, queueSize)
	}
	return p
}

func (p *Pool) Start(ctx context.Context) {
	for i, jobs := range p.shards {
		p.wg.Add(1)
		go func(id int, jobs <-chan Task) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-jobs:
					if err := task(ctx); err != nil {
						p.log.Error().Err(err).Int("shard", id).Msg("worker task error")
					}
				}
			}
		}(i, jobs)
	}
}

// Stop signals all shards to exit and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}

func (p *Pool) Submit(key int64, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case <-p.quit:
		return errors.New("worker pool stopped")
	default:
	}
	select {
	case p.shards[p.shardOf(key)] <- task:
		return nil
	default:
		// drop when saturated to avoid back-pressure on the update loop
		return ErrQueueFull
	}
}

func (p *Pool) shardOf(key int64) int {
	return int(uint64(key) % uint64(len(p.shards)))
}
