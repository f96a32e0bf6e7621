// Package llmclient is a thin boundary around the ADK agent/runner/session
// machinery, reducing a single-turn agent invocation (instruction + history
// + tools) down to a (text, tool calls, error) result. Callers that need
// mid-turn suspension (the supervisor's spawn_worker flow) supply a
// StopFunc checked between model calls.
package llmclient

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"github.com/cipher982/zerg/pkg/adk"
)

// Client turns ModelFactory-produced models into single-turn completions.
type Client struct {
	factory *adk.ModelFactory
	log     *slog.Logger
}

func New(factory *adk.ModelFactory, log *slog.Logger) *Client {
	return &Client{factory: factory, log: log}
}

// StopFunc, when it returns true during a BeforeModelCallback, ends the
// turn early with whatever text has already been produced. This is how
// a tool handler (e.g. spawn_worker) asks the turn to suspend without
// tearing down the ADK runner mid-stream.
type StopFunc func() bool

type Message struct {
	Role string
	Text string
}

type TurnRequest struct {
	ModelName   string
	Instruction string
	History     []Message
	UserText    string
	Tools       []tool.Tool
	Config      *genai.GenerateContentConfig
	Stop        StopFunc
	MaxSteps    int
}

type TurnResult struct {
	Text     string
	Stopped  bool
	Steps    int
}

const defaultMaxSteps = 12

// Turn runs one ADK agent turn to completion: either the model emits a
// final text response with no further tool calls, the step budget is
// exhausted, or Stop() trips. Tool execution itself happens inside the
// ADK runner via the supplied tool.Tool implementations.
func (c *Client) Turn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	modelName := req.ModelName
	var llm model.LLM
	var err error
	if modelName != "" {
		llm, err = c.factory.CreateModelWithName(ctx, modelName)
	} else {
		llm, err = c.factory.CreateModel(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}

	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	cfg := req.Config
	if cfg == nil {
		cfg = c.factory.DefaultGenerateConfig()
	}

	step := 0
	agentCfg := llmagent.Config{
		Name:                  "turn-agent",
		Description:           "single-turn agent invocation",
		Model:                 llm,
		Tools:                 req.Tools,
		Instruction:           req.Instruction,
		GenerateContentConfig: cfg,
		BeforeModelCallbacks: []llmagent.BeforeModelCallback{
			func(cbCtx agent.CallbackContext, llmReq *model.LLMRequest) (*model.LLMResponse, error) {
				step++
				if step > maxSteps {
					return &model.LLMResponse{
						Content: genai.NewContentFromText("Step limit reached.", "model"),
					}, nil
				}
				if req.Stop != nil && req.Stop() {
					return &model.LLMResponse{
						Content: genai.NewContentFromText("", "model"),
					}, nil
				}
				return nil, nil
			},
		},
	}

	llmAgent, err := llmagent.New(agentCfg)
	if err != nil {
		return nil, fmt.Errorf("build agent: %w", err)
	}

	sessionService := session.InMemoryService()
	createResp, err := sessionService.Create(ctx, &session.CreateRequest{
		AppName: "zerg",
		UserID:  "supervisor",
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sess := createResp.Session

	r, err := runner.New(runner.Config{
		Agent:          llmAgent,
		SessionService: sessionService,
		AppName:        "zerg",
	})
	if err != nil {
		return nil, fmt.Errorf("create runner: %w", err)
	}

	for _, m := range req.History {
		if err := sessionService.AppendEvent(ctx, sess, &session.Event{
			Author:  m.Role,
			Content: genai.NewContentFromText(m.Text, roleOrModel(m.Role)),
		}); err != nil {
			c.log.Warn("failed to replay history message into session", slog.String("error", err.Error()))
		}
	}

	userMessage := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(req.UserText)},
	}

	var lastEvent *session.Event
	for event, runErr := range r.Run(ctx, "supervisor", sess.ID(), userMessage, agent.RunConfig{}) {
		if runErr != nil {
			return nil, fmt.Errorf("agent turn: %w", runErr)
		}
		if event != nil {
			lastEvent = event
		}
	}

	result := &TurnResult{Steps: step}
	if req.Stop != nil && req.Stop() {
		result.Stopped = true
	}
	if lastEvent != nil && lastEvent.Content != nil {
		for _, part := range lastEvent.Content.Parts {
			if part.Text != "" {
				result.Text += part.Text
			}
		}
	}
	return result, nil
}

func roleOrModel(role string) string {
	if role == "user" {
		return "user"
	}
	return "model"
}
