package ai

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangchainProvider completes tasks synchronously against a chat-completion
// backend. Run blocks for the model call and returns the task already in a
// terminal status; results are kept in an in-process table keyed by a
// generated task id so Get and Wait are lookups.
type LangchainProvider struct {
	model llms.Model
	table *taskTable
}

// NewOpenAIProvider builds a synchronous provider over the OpenAI API.
func NewOpenAIProvider(apiKey, model string) (*LangchainProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key required")
	}
	m, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return &LangchainProvider{model: m, table: newTaskTable()}, nil
}

// NewAnthropicProvider builds a synchronous provider over the Anthropic API.
func NewAnthropicProvider(apiKey, model string) (*LangchainProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key required")
	}
	m, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create anthropic model: %w", err)
	}
	return &LangchainProvider{model: m, table: newTaskTable()}, nil
}

// NewOllamaProvider builds a synchronous provider over a local Ollama server.
func NewOllamaProvider(serverURL, model string) (*LangchainProvider, error) {
	m, err := ollama.New(ollama.WithServerURL(serverURL), ollama.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create ollama model: %w", err)
	}
	return &LangchainProvider{model: m, table: newTaskTable()}, nil
}

// Run generates the answer inline. The task id is created before the model
// call, so a failure during generation is recorded as a failed task with the
// id preserved and retrieval stays consistent.
func (p *LangchainProvider) Run(ctx context.Context, req TaskRequest) (*Task, error) {
	prompt := req.Instructions
	if len(req.OutputSchema) > 0 {
		prompt = prompt + "\n\nRespond with ONLY a single JSON object conforming to this JSON Schema. No explanatory text, no code fences.\n\nJSON-SCHEMA:\n" + string(req.OutputSchema)
	}

	task := &Task{ID: uuid.New().String(), Engine: req.Engine, Status: StatusRunning}

	answer, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt)
	if err != nil {
		task.Status = StatusFailed
		task.Error = err.Error()
		p.table.put(task)
		return task, nil
	}

	task.Status = StatusSucceeded
	task.Result = &Result{Answer: answer}
	p.table.put(task)
	return task, nil
}

// Get looks the task up in the in-process table.
func (p *LangchainProvider) Get(ctx context.Context, taskID string) (*Task, error) {
	task, ok := p.table.get(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// Wait is a lookup as well: tasks from this provider are terminal by the
// time Run returns.
func (p *LangchainProvider) Wait(ctx context.Context, taskID string) (*Task, error) {
	return p.Get(ctx, taskID)
}
