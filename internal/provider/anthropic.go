package provider

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/bookprep/backend/internal/objectid"
)

// AnthropicClient adapts the synchronous Anthropic messages API to the async
// job contract: Submit starts the call in the background and hands back a
// job id; Poll and FetchResult read the in-memory job table. Jobs do not
// survive a process restart.
type AnthropicClient struct {
	client *anthropic.Client
	model  string

	mu   sync.Mutex
	jobs map[string]*job
}

type job struct {
	state   State
	result  string
	message string
}

func NewAnthropicClient(model string) *AnthropicClient {
	if model == "" {
		model = os.Getenv("ANTHROPIC_MODEL")
	}
	if model == "" {
		model = "claude-opus-4-5-20251101"
	}
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &AnthropicClient{
		client: &client,
		model:  model,
		jobs:   make(map[string]*job),
	}
}

func (c *AnthropicClient) ModelName() string {
	return c.model
}

func (c *AnthropicClient) Submit(ctx context.Context, content, instructions string) (string, error) {
	if content == "" {
		return "", fmt.Errorf("empty content")
	}

	jobID := objectid.New()
	c.mu.Lock()
	c.jobs[jobID] = &job{state: StatePending}
	c.mu.Unlock()

	// Run in the background with a detached context: once submitted, the job
	// runs to completion regardless of the caller's request lifetime.
	go c.run(context.Background(), jobID, content, instructions)

	log.Printf("[provider] submitted job %s (%d bytes)", jobID, len(content))
	return jobID, nil
}

func (c *AnthropicClient) run(ctx context.Context, jobID, content, instructions string) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(0.0),
		System: []anthropic.TextBlockParam{
			{Text: instructions},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		c.finish(jobID, StateError, "", err.Error())
		return
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		c.finish(jobID, StateError, "", "no text content in API response")
		return
	}

	c.finish(jobID, StateSuccess, responseText, "")
}

func (c *AnthropicClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

func (c *AnthropicClient) finish(jobID string, state State, result, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if j, ok := c.jobs[jobID]; ok {
		j.state = state
		j.result = result
		j.message = message
	}
}

func (c *AnthropicClient) Poll(ctx context.Context, jobID string) (*JobStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	j, ok := c.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("unknown job id %s", jobID)
	}
	return &JobStatus{State: j.state, Message: j.message}, nil
}

func (c *AnthropicClient) FetchResult(ctx context.Context, jobID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	j, ok := c.jobs[jobID]
	if !ok {
		return "", fmt.Errorf("unknown job id %s", jobID)
	}
	if j.state != StateSuccess {
		return "", fmt.Errorf("job %s is %s, not ready", jobID, j.state)
	}
	return j.result, nil
}
