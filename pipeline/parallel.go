package pipeline

import (
	"runtime"
	"sync"
)

// Config configures how an update cycle is parallelized.
type Config struct {
	// Workers is the number of worker goroutines. 0 means runtime.GOMAXPROCS(0).
	Workers int

	// Tiles is the number of tiles the output extent is split into.
	// 0 means one tile per worker.
	Tiles int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Workers: 0, // Use all available CPUs
		Tiles:   0, // One tile per worker
	}
}

// effectiveWorkers returns the number of workers to use.
func (c Config) effectiveWorkers() int {
	if c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

// effectiveTiles returns the number of tiles to request from the splitter.
func (c Config) effectiveTiles() int {
	if c.Tiles <= 0 {
		return c.effectiveWorkers()
	}
	return c.Tiles
}

// WorkerPool runs submitted tasks on a fixed set of goroutines. Each task
// receives the id of the worker running it.
type WorkerPool struct {
	numWorkers int
	wg         sync.WaitGroup
	taskChan   chan func(workerID int)
	done       sync.WaitGroup
	once       sync.Once
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &WorkerPool{
		numWorkers: numWorkers,
		taskChan:   make(chan func(int), numWorkers*4),
	}

	pool.done.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go pool.worker(i)
	}

	return pool
}

// NumWorkers returns the number of worker goroutines.
func (p *WorkerPool) NumWorkers() int {
	return p.numWorkers
}

// worker is the main loop for a worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.done.Done()
	for task := range p.taskChan {
		task(id)
		p.wg.Done()
	}
}

// Submit submits a task to the pool.
func (p *WorkerPool) Submit(task func(workerID int)) {
	p.wg.Add(1)
	p.taskChan <- task
}

// Wait waits for all submitted tasks to complete.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Close shuts down the worker pool and waits for its goroutines to exit.
func (p *WorkerPool) Close() {
	p.once.Do(func() {
		close(p.taskChan)
	})
	p.done.Wait()
}
