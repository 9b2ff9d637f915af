// Package hxmadapter bridges an external collect-request source (HXM) into
// the scheduler's task queue and reports back the accept/reject decision
// for each request. It is the Go analogue of hamilton's
// operators.hxm_adapter.api.HXMAdapter.
//
// This adapter's upstream is a plain JSON REST API, so it is built on
// net/http rather than adopting grpc or a dependency the rest of the
// system doesn't otherwise need.
package hxmadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/je9pel/observatory/internal/task"
)

// Scheduler is the enqueue target for translated collect requests.
type Scheduler interface {
	EnqueueTask(t *task.Task)
}

// Config parameterizes an Adapter's upstream endpoint and poll cadence.
type Config struct {
	BaseURL      string
	PollInterval time.Duration
	RequestTimeout time.Duration
}

// CollectRequest is the subset of HXM's collect-request document this
// adapter consumes.
type CollectRequest struct {
	ID        string    `json:"id"`
	SatNo     string    `json:"satNo"`
	StartTime time.Time `json:"startTime,omitempty"`
}

// Adapter polls HXM for collect requests, translates each into a task and
// enqueues it with the scheduler, and submits collect responses back.
type Adapter struct {
	cfg       Config
	generator *task.Generator
	scheduler Scheduler
	client    *http.Client
	logger    *slog.Logger

	lastDispatchedTaskID string
}

// New creates an Adapter.
func New(cfg Config, generator *task.Generator, scheduler Scheduler, logger *slog.Logger) *Adapter {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	return &Adapter{
		cfg:       cfg,
		generator: generator,
		scheduler: scheduler,
		client:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:    logger,
	}
}

// LastDispatchedTaskID reports the id of the most recently enqueued task,
// or "" if none has been dispatched yet.
func (a *Adapter) LastDispatchedTaskID() string { return a.lastDispatchedTaskID }

// Run polls HXM for collect requests until ctx is cancelled, translating
// each into a task and handing it to the scheduler.
func (a *Adapter) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting hxm adapter poll loop")
	for ctx.Err() == nil {
		req, err := a.popCollectRequest(ctx)
		if err != nil {
			a.logger.ErrorContext(ctx, "polling hxm for collect request failed", "error", err)
		}

		if req != nil {
			t, err := a.collectRequestToTask(ctx, *req)
			if err != nil {
				a.logger.ErrorContext(ctx, "translating collect request to task failed", "error", err, "request_id", req.ID)
			} else if t != nil {
				a.scheduler.EnqueueTask(t)
				a.lastDispatchedTaskID = t.TaskID
				a.logger.InfoContext(ctx, "enqueued task from collect request", "task_id", t.TaskID, "request_id", req.ID)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Second):
				}
				continue
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(a.cfg.PollInterval):
		}
	}
	return nil
}

// popCollectRequest pops the next collect request from HXM, returning nil
// when none is queued.
func (a *Adapter) popCollectRequest(ctx context.Context) (*CollectRequest, error) {
	var out CollectRequest
	found, err := a.getJSON(ctx, "/api/v1/collect-requests/pop", &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

// SubmitCollectResponse posts an accept/reject decision for a dispatched
// task back to HXM.
func (a *Adapter) SubmitCollectResponse(ctx context.Context, t *task.Task, accepted bool) error {
	resp := taskToCollectResponse(t, accepted)
	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("hxmadapter: marshalling collect response: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/api/v1/collect-responses", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("hxmadapter: building collect response request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("hxmadapter: submitting collect response: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("hxmadapter: collect response rejected with status %d", res.StatusCode)
	}
	return nil
}

func (a *Adapter) getJSON(ctx context.Context, path string, out any) (found bool, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("hxmadapter: building request: %w", err)
	}
	res, err := a.client.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("hxmadapter: requesting %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.StatusCode >= 300 {
		return false, fmt.Errorf("hxmadapter: %s returned status %d", path, res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return false, fmt.Errorf("hxmadapter: reading response body: %w", err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("hxmadapter: decoding response: %w", err)
	}
	return true, nil
}

// collectRequestToTask translates one HXM collect request into a task
// using the shared task generator, honoring the request's sat id and
// optional start time.
func (a *Adapter) collectRequestToTask(ctx context.Context, req CollectRequest) (*task.Task, error) {
	if req.SatNo == "" {
		return nil, fmt.Errorf("hxmadapter: collect request missing satNo")
	}
	startTime := req.StartTime
	if startTime.IsZero() {
		startTime = time.Now().UTC()
	}
	return a.generator.Generate(ctx, req.SatNo, startTime)
}

// CollectResponse is the document this adapter reports back to HXM,
// mirroring task_to_collect_response's accepted/rejected shapes.
type CollectResponse struct {
	ModelType            string `json:"modelType"`
	ClassificationMarking string `json:"classificationMarking"`
	Source                string `json:"source"`
	Origin                string `json:"origin"`
	CollectRequestID       string `json:"collectRequestId"`
	ActualStartDateTime    string `json:"actualStartDateTime,omitempty"`
	ActualEndDateTime      string `json:"actualEndDateTime,omitempty"`
	Notes                  string `json:"notes"`
	ErrorDescription       string `json:"errorDescription,omitempty"`
}

func taskToCollectResponse(t *task.Task, accepted bool) CollectResponse {
	resp := CollectResponse{
		Source:           "hamilton-x-machina",
		Origin:           "TEST-ORIGIN",
		CollectRequestID: t.TaskID,
	}
	if accepted {
		resp.ModelType = "CollectResponseAccepted"
		resp.ClassificationMarking = "U"
		resp.ActualStartDateTime = t.Parameters.Aos.Time.Format(time.RFC3339)
		resp.ActualEndDateTime = t.Parameters.Los.Time.Format(time.RFC3339)
		resp.Notes = "Accepted by the sensor"
	} else {
		resp.ModelType = "CollectResponseRejected"
		resp.ClassificationMarking = "U"
		resp.Notes = "Rejected by the sensor"
		resp.ErrorDescription = "Cannot schedule due to resource constraints"
	}
	return resp
}
