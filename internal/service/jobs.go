package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/necfill/api/internal/model"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobRunning  = errors.New("job still running")
	ErrJobFailed   = errors.New("job failed")
	ErrNoArchive   = errors.New("archive not available")
)

// JobService owns every job record for the process lifetime. All access to
// job fields goes through the registry mutex; critical sections are field
// reads and assignments only. Records are dropped once their age exceeds
// the retention window, finished or not. A slow client can lose a result,
// which keeps memory bounded on long-running deployments.
type JobService struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
	ttl  time.Duration
	now  func() time.Time
}

func NewJobService(ttl time.Duration) *JobService {
	return &JobService{
		jobs: make(map[string]*model.Job),
		ttl:  ttl,
		now:  time.Now,
	}
}

// CreateJob registers a new queued job and returns its id.
func (s *JobService) CreateJob() string {
	jobID := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.jobs[jobID] = &model.Job{
		ID:        jobID,
		CreatedAt: s.now(),
		Status:    model.StatusQueued,
	}
	return jobID
}

// Progress returns the polling snapshot for a job.
func (s *JobService) Progress(jobID string) (*model.GenerateProgressResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}

	percent := 0
	if job.TotalRecipients > 0 {
		percent = job.DoneRecipients * 100 / job.TotalRecipients
	}
	return &model.GenerateProgressResponse{
		JobID:           job.ID,
		TotalRecipients: job.TotalRecipients,
		DoneRecipients:  job.DoneRecipients,
		Percent:         percent,
		Status:          job.Status,
		Finished:        job.Finished,
		Error:           job.Error,
	}, nil
}

// Result returns the finished archive bytes.
func (s *JobService) Result(jobID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	if !job.Finished {
		return nil, ErrJobRunning
	}
	if job.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrJobFailed, *job.Error)
	}
	if len(job.Archive) == 0 {
		return nil, ErrNoArchive
	}
	return job.Archive, nil
}

// Depth reports how many job records the registry currently holds.
func (s *JobService) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.jobs)
}

// Worker-side mutators. A terminal job is never mutated again; a swept job
// is silently gone, so its worker keeps running against nothing.

// SetRunning fixes the recipient total and moves the job to its running
// label.
func (s *JobService) SetRunning(jobID string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Finished {
		return
	}
	job.TotalRecipients = total
	job.DoneRecipients = 0
	job.Status = model.StatusGenerating
}

// SetStatus updates the human-readable status line.
func (s *JobService) SetStatus(jobID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Finished {
		return
	}
	job.Status = status
}

// RowDone records one more completed recipient. The count never regresses
// and never exceeds the total.
func (s *JobService) RowDone(jobID string, done int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Finished {
		return
	}
	if done > job.DoneRecipients && done <= job.TotalRecipients {
		job.DoneRecipients = done
	}
}

// Complete stores the finished archive and marks the job terminal.
func (s *JobService) Complete(jobID string, archive []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Finished {
		return
	}
	job.Archive = archive
	job.Status = model.StatusCompleted
	job.Finished = true
}

// Fail records the error message and marks the job terminal.
func (s *JobService) Fail(jobID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Finished {
		return
	}
	job.Error = &message
	job.Status = model.StatusError
	job.Finished = true
}

// sweepLocked drops any job older than the retention window regardless of
// state. Runs on every registry access; callers must hold the mutex.
func (s *JobService) sweepLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
