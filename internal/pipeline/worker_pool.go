package pipeline

import (
	"runtime"
	"sync"
)

// WorkerPool fans out the independent per-metric computations. Jobs only
// read shared immutable artifacts, so no synchronization beyond the
// completion WaitGroup supplied by the caller is needed.
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	once     sync.Once
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start initializes and starts all workers in the pool
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

// worker processes jobs from the job queue
func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		wp.runJob(job)
	}
}

// runJob keeps a panicking job from taking the worker down. Jobs that need
// to observe their own panics recover at the submission site.
func (wp *WorkerPool) runJob(job func()) {
	defer func() {
		_ = recover()
	}()
	job()
}

// Submit adds a job to the worker pool queue
func (wp *WorkerPool) Submit(job func()) {
	wp.jobQueue <- job
}

// Close shuts down the worker pool
func (wp *WorkerPool) Close() {
	close(wp.jobQueue)
}
