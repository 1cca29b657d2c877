package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RelayProvider talks to an asynchronous task-relay API: work is submitted
// with one POST and polled with GETs until the relay reports a terminal
// status. The relay's own timeout surfaces as timed_out; callers that need a
// shorter bound layer WaitForCompletion on top.
type RelayProvider struct {
	http         *resty.Client
	pollInterval time.Duration
	waitCeiling  time.Duration
}

// NewRelayProvider builds an asynchronous provider against baseURL.
func NewRelayProvider(baseURL string, pollInterval, waitCeiling time.Duration) *RelayProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(8 * time.Second)
	return &RelayProvider{
		http:         client,
		pollInterval: pollInterval,
		waitCeiling:  waitCeiling,
	}
}

type relayTask struct {
	TaskID    string `json:"task_id"`
	Engine    string `json:"engine"`
	Status    string `json:"status"`
	Answer    string `json:"answer,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (rt *relayTask) toTask() *Task {
	task := &Task{
		ID:     rt.TaskID,
		Engine: rt.Engine,
		Status: Status(rt.Status),
		Error:  rt.Error,
	}
	if task.Status == StatusSucceeded {
		task.Result = &Result{Answer: rt.Answer, Reasoning: rt.Reasoning}
	}
	return task
}

// Run submits the task. A transport error or non-2xx response means no task
// id was ever produced, so the whole attempt is invalidated.
func (p *RelayProvider) Run(ctx context.Context, req TaskRequest) (*Task, error) {
	var rt relayTask
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&rt).
		Post("/v1/tasks")
	if err != nil {
		return nil, fmt.Errorf("submit task: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusAccepted {
		return nil, fmt.Errorf("submit task: relay returned status %d", resp.StatusCode())
	}
	if rt.TaskID == "" {
		return nil, fmt.Errorf("submit task: relay returned no task id")
	}
	if rt.Engine == "" {
		rt.Engine = req.Engine
	}
	return rt.toTask(), nil
}

// Get fetches current status from the relay without side effects.
func (p *RelayProvider) Get(ctx context.Context, taskID string) (*Task, error) {
	var rt relayTask
	resp, err := p.http.R().
		SetContext(ctx).
		SetResult(&rt).
		Get("/v1/tasks/" + taskID)
	if err != nil {
		return nil, fmt.Errorf("fetch task %s: %w", taskID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrTaskNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch task %s: relay returned status %d", taskID, resp.StatusCode())
	}
	return rt.toTask(), nil
}

// Wait polls on the fixed interval until the relay reports a terminal status
// or the provider's internal ceiling elapses.
func (p *RelayProvider) Wait(ctx context.Context, taskID string) (*Task, error) {
	return WaitForCompletion(ctx, p, taskID, p.pollInterval, p.waitCeiling)
}
