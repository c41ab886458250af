package printer

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Job statuses
const (
	StatusQueued    = "queued"
	StatusPrinting  = "printing"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job is one label queued for printing.
type Job struct {
	ID        string      `json:"id"`
	VehicleID string      `json:"vehicle_id"`
	Image     image.Image `json:"-"`
	Retries   int         `json:"retries"`
	Status    string      `json:"status"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Target identifies the printer the queue drains to.
type Target struct {
	Host string
	Port int
}

// Queue feeds labels to a single thermal printer with retries. Jobs
// are processed in FIFO order by a background worker.
type Queue struct {
	jobs       []*Job
	mu         sync.Mutex
	target     Target
	maxRetries int
	log        zerolog.Logger

	// OnJobUpdate is invoked after every status change, outside the
	// queue lock. Used to push updates to websocket clients.
	OnJobUpdate func(job Job)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewQueue creates a queue and starts its worker.
func NewQueue(target Target, maxRetries int, log zerolog.Logger) *Queue {
	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		jobs:       make([]*Job, 0),
		target:     target,
		maxRetries: maxRetries,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// Enqueue adds a label to the queue and returns its job ID.
func (q *Queue) Enqueue(vehicleID string, img image.Image) string {
	q.mu.Lock()

	job := &Job{
		ID:        uuid.New().String(),
		VehicleID: vehicleID,
		Image:     img,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}
	q.jobs = append(q.jobs, job)
	snapshot := *job

	q.mu.Unlock()

	q.notify(snapshot)
	return job.ID
}

func (q *Queue) worker() {
	defer q.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.processNext()
		}
	}
}

func (q *Queue) processNext() {
	q.mu.Lock()

	var job *Job
	for _, j := range q.jobs {
		if j.Status == StatusQueued {
			job = j
			job.Status = StatusPrinting
			break
		}
	}

	var printing Job
	if job != nil {
		printing = *job
	}
	q.mu.Unlock()

	if job == nil {
		return
	}
	q.notify(printing)

	err := q.printJob(job)

	q.mu.Lock()
	if err != nil {
		job.Retries++
		job.Error = err.Error()

		if job.Retries >= q.maxRetries {
			job.Status = StatusFailed
			q.log.Error().
				Str("job_id", job.ID).
				Str("vehicle_id", job.VehicleID).
				Int("retries", job.Retries).
				Err(err).
				Msg("print job failed")
		} else {
			job.Status = StatusQueued
			q.log.Warn().
				Str("job_id", job.ID).
				Int("retry", job.Retries).
				Int("max", q.maxRetries).
				Err(err).
				Msg("print job failed, retrying")
		}
	} else {
		job.Status = StatusCompleted
		job.Error = ""
		q.log.Info().
			Str("job_id", job.ID).
			Str("vehicle_id", job.VehicleID).
			Msg("print job completed")
	}
	snapshot := *job
	q.mu.Unlock()

	q.notify(snapshot)

	if err != nil && snapshot.Status == StatusQueued {
		// Brief pause before the worker picks it up again.
		time.Sleep(time.Second)
	}
}

func (q *Queue) printJob(job *Job) error {
	conn, err := Connect(q.target.Host, q.target.Port)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.PrintLabel(job.Image)
}

func (q *Queue) notify(job Job) {
	if q.OnJobUpdate != nil {
		q.OnJobUpdate(job)
	}
}

// GetJob returns a copy of the job, or nil if unknown.
func (q *Queue) GetJob(jobID string) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, job := range q.jobs {
		if job.ID == jobID {
			jobCopy := *job
			return &jobCopy
		}
	}
	return nil
}

// GetAllJobs returns copies of every job, newest last.
func (q *Queue) GetAllJobs() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]*Job, len(q.jobs))
	for i, job := range q.jobs {
		jobCopy := *job
		jobs[i] = &jobCopy
	}
	return jobs
}

// ClearCompleted drops completed jobs from the queue.
func (q *Queue) ClearCompleted() {
	q.mu.Lock()
	defer q.mu.Unlock()

	filtered := q.jobs[:0]
	for _, job := range q.jobs {
		if job.Status != StatusCompleted {
			filtered = append(filtered, job)
		}
	}
	q.jobs = filtered
}

// Stop shuts down the worker and waits for it to exit.
func (q *Queue) Stop() {
	q.cancel()
	q.wg.Wait()
}
