// Package scheduler maintains a time-ordered queue of upcoming passes,
// refreshes it periodically against the astrodynamics and radiometrics
// services, and dispatches each task to the orchestrator at the right
// time. It is the Go analogue of hamilton's operators.scheduler.api.Scheduler.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/je9pel/observatory/internal/task"
)

// Mode is one of the scheduler's four mutually exclusive operating modes.
// The original implementation lets survey and collect_request feed the
// same queue concurrently in places; this package treats every mode as
// strictly exclusive, per the decision to resolve that ambiguity in favor
// of a single enum-driven switch.
type Mode int

const (
	ModeSurvey Mode = iota
	ModeStandby
	ModeInactive
	ModeCollectRequest
)

func (m Mode) String() string {
	switch m {
	case ModeSurvey:
		return "survey"
	case ModeStandby:
		return "standby"
	case ModeInactive:
		return "inactive"
	case ModeCollectRequest:
		return "collect_request"
	default:
		return "unknown"
	}
}

// Orchestrator is the dispatch target for a task, satisfied by an
// orchestrator.Service or an RPC client wrapping one.
type Orchestrator interface {
	Orchestrate(ctx context.Context, t *task.Task) error
	IsRunning() bool
}

// TargetSource supplies the satellite ids ModeSurvey populates its target
// set from.
type TargetSource interface {
	GetActiveDownlinkSatelliteIDs(ctx context.Context) ([]string, error)
}

// Config parameterizes a Scheduler's timing.
type Config struct {
	RefreshInterval time.Duration
	DispatchBuffer  time.Duration
}

// Scheduler maintains the task queue and drives its refresh/dispatch loop.
type Scheduler struct {
	cfg          Config
	generator    *task.Generator
	orchestrator Orchestrator
	targetSource TargetSource
	logger       *slog.Logger

	mu      sync.Mutex
	mode    Mode
	targets []string
	queue   []*task.Task

	queueNonEmpty chan struct{}
}

// New creates a Scheduler in ModeInactive.
func New(cfg Config, generator *task.Generator, orchestrator Orchestrator, targetSource TargetSource, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:           cfg,
		generator:     generator,
		orchestrator:  orchestrator,
		targetSource:  targetSource,
		logger:        logger,
		mode:          ModeInactive,
		queueNonEmpty: make(chan struct{}, 1),
	}
}

// SetMode atomically switches the scheduler's mode. Switching to
// ModeInactive also clears the target set and queue; SetMode does not
// otherwise re-evaluate the queue, so other modes take effect at Run's next
// refresh.
func (s *Scheduler) SetMode(ctx context.Context, mode Mode) {
	s.mu.Lock()
	s.mode = mode
	if mode == ModeInactive {
		s.targets = nil
		s.queue = nil
	}
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "scheduler mode changed", "mode", mode)
}

// AddTarget adds sat_id to the target set used by ModeSurvey and
// ModeCollectRequest-adjacent manual additions.
func (s *Scheduler) AddTarget(satID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.targets {
		if t == satID {
			return
		}
	}
	s.targets = append(s.targets, satID)
}

// EnqueueTask directly inserts an externally generated task into the
// queue, used by the collect-request adapter in ModeCollectRequest.
func (s *Scheduler) EnqueueTask(t *task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = mergeQueue(s.queue, []*task.Task{t})
	s.signalNonEmptyLocked()
}

// Status reports the scheduler's current mode, targets and queued task ids.
type Status struct {
	Mode        Mode
	Targets     []string
	QueuedTasks []string
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.queue))
	for i, t := range s.queue {
		ids[i] = t.TaskID
	}
	return Status{Mode: s.mode, Targets: append([]string(nil), s.targets...), QueuedTasks: ids}
}

// Run drives the refresh→dispatch→sleep loop until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting scheduling loop")
	for ctx.Err() == nil {
		if err := s.refreshTasks(ctx); err != nil {
			s.logger.ErrorContext(ctx, "refresh failed", "error", err)
		}
		if err := s.dispatchTasks(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.ErrorContext(ctx, "dispatch loop error", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.cfg.DispatchBuffer):
		}
	}
	return nil
}

// refreshTasks regenerates candidate tasks for the current target set
// (ModeSurvey/ModeCollectRequest only; ModeStandby/ModeInactive never
// generate new candidates) and merges them into the queue.
func (s *Scheduler) refreshTasks(ctx context.Context) error {
	s.mu.Lock()
	mode := s.mode
	targets := append([]string(nil), s.targets...)
	s.mu.Unlock()

	if mode == ModeStandby || mode == ModeInactive {
		return nil
	}

	if mode == ModeSurvey && s.targetSource != nil {
		ids, err := s.targetSource.GetActiveDownlinkSatelliteIDs(ctx)
		if err != nil {
			return fmt.Errorf("scheduler: refreshing survey targets: %w", err)
		}
		s.mu.Lock()
		s.targets = ids
		targets = ids
		s.mu.Unlock()
	}

	var fresh []*task.Task
	now := time.Now().UTC()
	for _, satID := range targets {
		t, err := s.generator.Generate(ctx, satID, now)
		if err != nil {
			s.logger.ErrorContext(ctx, "task generation failed", "sat_id", satID, "error", err)
			continue
		}
		if t != nil {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) == 0 {
		return nil
	}

	s.mu.Lock()
	s.queue = mergeQueue(s.queue, fresh)
	s.signalNonEmptyLocked()
	s.mu.Unlock()
	return nil
}

// mergeQueue removes queued entries whose (satId, aos, los) matches a
// fresh entry (the fresher wins), appends the fresh entries, sorts
// ascending by AOS, then greedily drops any task whose window overlaps an
// earlier one (first-scheduled wins).
func mergeQueue(existing, fresh []*task.Task) []*task.Task {
	kept := existing[:0:0]
	for _, e := range existing {
		if !matchesAny(e, fresh) {
			kept = append(kept, e)
		}
	}
	kept = append(kept, fresh...)

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Parameters.Aos.Time.Before(kept[j].Parameters.Aos.Time)
	})

	var result []*task.Task
	for _, t := range kept {
		if !overlapsAny(t, result) {
			result = append(result, t)
		}
	}
	return result
}

func matchesAny(t *task.Task, candidates []*task.Task) bool {
	for _, c := range candidates {
		if tasksMatch(t, c) {
			return true
		}
	}
	return false
}

func tasksMatch(a, b *task.Task) bool {
	return a.Parameters.SatID == b.Parameters.SatID &&
		a.Parameters.Aos.Time.Equal(b.Parameters.Aos.Time) &&
		a.Parameters.Los.Time.Equal(b.Parameters.Los.Time)
}

func overlapsAny(t *task.Task, scheduled []*task.Task) bool {
	for _, s := range scheduled {
		if tasksOverlap(t, s) {
			return true
		}
	}
	return false
}

func tasksOverlap(a, b *task.Task) bool {
	aos1, los1 := a.Parameters.Aos.Time, a.Parameters.Los.Time
	aos2, los2 := b.Parameters.Aos.Time, b.Parameters.Los.Time
	return between(aos2, aos1, los1) || between(los2, aos1, los1) ||
		between(aos1, aos2, los2) || between(los1, aos2, los2)
}

func between(t, lo, hi time.Time) bool {
	return !t.Before(lo) && !t.After(hi)
}

func (s *Scheduler) signalNonEmptyLocked() {
	if len(s.queue) == 0 {
		return
	}
	select {
	case s.queueNonEmpty <- struct{}{}:
	default:
	}
}

// dispatchTasks pops and dispatches tasks in strict AOS order, waiting
// (cancellably) until dispatch_buffer before each task's AOS, and skipping
// any task whose window has already passed before dispatch.
func (s *Scheduler) dispatchTasks(ctx context.Context) error {
	for {
		s.mu.Lock()
		empty := len(s.queue) == 0
		s.mu.Unlock()

		if empty {
			select {
			case <-ctx.Done():
				return nil
			case <-s.queueNonEmpty:
			case <-time.After(s.cfg.DispatchBuffer):
				return nil
			}
		}

		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			head := s.queue[0]
			s.mu.Unlock()

			now := time.Now().UTC()
			aos := head.Parameters.Aos.Time
			los := head.Parameters.Los.Time
			timeUntilDispatch := aos.Sub(now) - s.cfg.DispatchBuffer

			if timeUntilDispatch > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(timeUntilDispatch):
				}
			}

			now = time.Now().UTC()
			s.mu.Lock()
			if len(s.queue) == 0 || s.queue[0] != head {
				s.mu.Unlock()
				continue
			}
			s.queue = s.queue[1:]
			s.mu.Unlock()

			if now.Before(aos.Add(-s.cfg.DispatchBuffer)) || now.After(los) {
				s.logger.InfoContext(ctx, "task skipped, beyond dispatch window", "task_id", head.TaskID)
				continue
			}

			if err := s.orchestrator.Orchestrate(ctx, head); err != nil {
				s.logger.ErrorContext(ctx, "orchestration failed", "task_id", head.TaskID, "error", err)
				continue
			}
			s.logger.InfoContext(ctx, "dispatched task", "task_id", head.TaskID)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Until(los)):
			}
			s.logger.InfoContext(ctx, "task completed", "task_id", head.TaskID)
		}
	}
}
