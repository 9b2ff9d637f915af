package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/je9pel/observatory/internal/astro"
	"github.com/je9pel/observatory/internal/sdr"
	"github.com/je9pel/observatory/internal/signalprocessor"
	"github.com/je9pel/observatory/internal/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTracker struct {
	mu              sync.Mutex
	calls           []string
	slewHomeErr     error
	slewAosErr      error
	setupErr        error
	trackBlockUntil chan struct{}
}

func (f *fakeTracker) SlewToHome(ctx context.Context) error {
	f.mu.Lock()
	f.calls = append(f.calls, "slew_home")
	f.mu.Unlock()
	return f.slewHomeErr
}

func (f *fakeTracker) SlewToAos(ctx context.Context) error {
	f.mu.Lock()
	f.calls = append(f.calls, "slew_aos")
	f.mu.Unlock()
	return f.slewAosErr
}

func (f *fakeTracker) SetupTask(t *task.Task) error {
	f.mu.Lock()
	f.calls = append(f.calls, "setup_task")
	f.mu.Unlock()
	return f.setupErr
}

func (f *fakeTracker) Track(ctx context.Context) error {
	f.mu.Lock()
	f.calls = append(f.calls, "track")
	f.mu.Unlock()
	<-ctx.Done()
	return nil
}

func (f *fakeTracker) recordedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeRecorder struct {
	mu          sync.Mutex
	started     bool
	stopped     bool
	startErr    error
	stopErr     error
	startParams sdr.Parameters
}

func (f *fakeRecorder) StartRecording(ctx context.Context, params sdr.Parameters) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	f.startParams = params
	return "/tmp/rec.sigmf", f.startErr
}

func (f *fakeRecorder) StopRecording(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return f.stopErr
}

type fakeSignalProcessor struct {
	processed bool
	err       error
}

func (f *fakeSignalProcessor) Process(ctx context.Context, sigmfBaseName string) (signalprocessor.Artefacts, error) {
	f.processed = true
	if f.err != nil {
		return signalprocessor.Artefacts{}, f.err
	}
	return signalprocessor.Artefacts{PSDPath: "psd", SpectrogramPath: "spec", PanelPath: "panel"}, nil
}

type fakeStatusPublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeStatusPublisher) PublishStatusEvent(ctx context.Context, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, status)
	return nil
}

func (f *fakeStatusPublisher) recordedEvents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	copy(out, f.events)
	return out
}

func passingTask() *task.Task {
	now := time.Now()
	return &task.Task{
		TaskID: "t1",
		Parameters: task.Parameters{
			SatID: "SAT-1",
			Aos:   &astro.Event{Time: now.Add(5 * time.Millisecond)},
			Los:   &astro.Event{Time: now.Add(10 * time.Millisecond)},
			SDR:   task.SDRParameters{SatID: "SAT-1", Freq: 437.5e6},
		},
	}
}

func TestService_Orchestrate_FullSequence(t *testing.T) {
	tracker := &fakeTracker{}
	recorder := &fakeRecorder{}
	signal := &fakeSignalProcessor{}
	status := &fakeStatusPublisher{}

	svc := New(tracker, recorder, signal, status, testLogger())

	if err := svc.Orchestrate(context.Background(), passingTask()); err != nil {
		t.Fatalf("Orchestrate returned error: %v", err)
	}

	calls := tracker.recordedCalls()
	wantOrder := []string{"slew_home", "setup_task", "slew_aos", "track", "slew_home"}
	if len(calls) != len(wantOrder) {
		t.Fatalf("calls = %v, want %v", calls, wantOrder)
	}
	for i, c := range wantOrder {
		if calls[i] != c {
			t.Errorf("call[%d] = %q, want %q", i, calls[i], c)
		}
	}

	if !recorder.started || !recorder.stopped {
		t.Errorf("expected recording to start and stop, got started=%v stopped=%v", recorder.started, recorder.stopped)
	}
	if !signal.processed {
		t.Error("expected signal processing to run after a successful pass")
	}

	events := status.recordedEvents()
	if len(events) != 2 || events[0] != "active" || events[1] != "idle" {
		t.Errorf("status events = %v, want [active idle]", events)
	}

	if svc.IsRunning() {
		t.Error("expected IsRunning() to be false once Orchestrate returns")
	}
}

func TestService_Orchestrate_RefusesConcurrentRun(t *testing.T) {
	tracker := &fakeTracker{}
	recorder := &fakeRecorder{}
	signal := &fakeSignalProcessor{}
	status := &fakeStatusPublisher{}
	svc := New(tracker, recorder, signal, status, testLogger())

	// Simulate an in-progress orchestration directly via the unexported isRunning guard.
	svc.isRunning.Store(true)

	err := svc.Orchestrate(context.Background(), passingTask())
	if err == nil {
		t.Fatal("expected an error when an orchestration is already running")
	}
}

func TestService_Orchestrate_TrackerSlewFailureStopsRecordingAndAbortsRun(t *testing.T) {
	tracker := &fakeTracker{slewHomeErr: errors.New("mount offline")}
	recorder := &fakeRecorder{}
	signal := &fakeSignalProcessor{}
	status := &fakeStatusPublisher{}
	svc := New(tracker, recorder, signal, status, testLogger())

	err := svc.Orchestrate(context.Background(), passingTask())
	if err == nil {
		t.Fatal("expected the slew failure to propagate")
	}
	if !recorder.stopped {
		t.Error("expected StopRecording to be called even when the pass aborts before recording started")
	}
	if svc.IsRunning() {
		t.Error("expected IsRunning() to be false after an aborted orchestration")
	}
	events := status.recordedEvents()
	if len(events) != 2 || events[1] != "idle" {
		t.Errorf("status events = %v, want the final event to be idle", events)
	}
}

func TestService_StopOrchestrating_CancelsRun(t *testing.T) {
	tracker := &fakeTracker{}
	recorder := &fakeRecorder{}
	signal := &fakeSignalProcessor{}
	status := &fakeStatusPublisher{}
	svc := New(tracker, recorder, signal, status, testLogger())

	// Use a task whose pass spans long enough that StopOrchestrating
	// observably interrupts it mid-flight.
	now := time.Now()
	longTask := &task.Task{
		TaskID: "t2",
		Parameters: task.Parameters{
			SatID: "SAT-1",
			Aos:   &astro.Event{Time: now.Add(-time.Millisecond)},
			Los:   &astro.Event{Time: now.Add(time.Hour)},
			SDR:   task.SDRParameters{SatID: "SAT-1", Freq: 437.5e6},
		},
	}

	done := make(chan error, 1)
	go func() { done <- svc.Orchestrate(context.Background(), longTask) }()

	// Give Orchestrate a moment to reach the long sleep-until-los.
	time.Sleep(20 * time.Millisecond)
	svc.StopOrchestrating(context.Background())

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected Orchestrate to return the cancellation error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Orchestrate did not return after StopOrchestrating")
	}

	if svc.IsRunning() {
		t.Error("expected IsRunning() to be false after StopOrchestrating")
	}
}
