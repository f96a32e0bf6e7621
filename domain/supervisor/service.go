// Package supervisor implements the Supervisor Service: the entrypoint
// that turns a natural-language task into a running agent conversation,
// delegating to worker jobs when the task calls for background work.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/cipher982/zerg/domain/agents"
	"github.com/cipher982/zerg/domain/eventbus"
	"github.com/cipher982/zerg/domain/runs"
	"github.com/cipher982/zerg/domain/threads"
	"github.com/cipher982/zerg/domain/workerqueue"
	"github.com/cipher982/zerg/internal/config"
	"github.com/cipher982/zerg/pkg/llmclient"
	"github.com/cipher982/zerg/pkg/logger"
	"github.com/cipher982/zerg/pkg/sse"
)

const toolNameSpawnWorker = "spawn_worker"

// Service runs the supervisor conversation loop described in the data
// model: resolve the owner's singleton agent+thread, create or adopt a
// run, build the cache-optimized message array, invoke the LLM, and
// interpret the result as either a final answer or a delegated worker
// job.
type Service struct {
	agents  *agents.Service
	threads *threads.Service
	runs    *runs.Service
	queue   *workerqueue.Service
	bus     *eventbus.Publisher
	llm     *llmclient.Client
	cfg     *config.Config
	log     *slog.Logger

	idempotency *idempotencyCache
	rateLimit   *ownerRateLimiter

	// pending tracks the cancel func for every in-flight run so
	// Cancel can interrupt a blocking LLM call cooperatively.
	pendingMu sync.Mutex
	pending   map[string]context.CancelFunc
}

func NewService(
	agentsSvc *agents.Service,
	threadsSvc *threads.Service,
	runsSvc *runs.Service,
	queue *workerqueue.Service,
	bus *eventbus.Publisher,
	llm *llmclient.Client,
	cfg *config.Config,
	log *slog.Logger,
) *Service {
	return &Service{
		agents:      agentsSvc,
		threads:     threadsSvc,
		runs:        runsSvc,
		queue:       queue,
		bus:         bus,
		llm:         llm,
		cfg:         cfg,
		log:         log.With(logger.Scope("supervisor")),
		idempotency: newIdempotencyCache(cfg.IdempotencyTTL, cfg.IdempotencyMaxSize),
		rateLimit:   newOwnerRateLimiter(cfg.SupervisorRateLimitPerMinute, cfg.SupervisorRateLimitBurst),
		pending:     make(map[string]context.CancelFunc),
	}
}

// ErrRateLimited signals the owner has exceeded SupervisorRateLimitPerMinute.
var ErrRateLimited = errors.New("supervisor: rate limit exceeded")

// Dispatch handles a fresh POST /supervisor call: it resolves the
// idempotency key (if any) before doing any work, then starts the
// supervisor turn in the background and returns immediately with the
// run in RUNNING status. The caller streams progress via /stream/runs/{run_id}.
func (s *Service) Dispatch(ctx context.Context, ownerID, task, idempotencyKey string) (*Result, error) {
	if !s.rateLimit.Allow(ownerID) {
		return nil, ErrRateLimited
	}

	now := time.Now()
	if runID, ok := s.idempotency.Get(idempotencyKey, now); ok {
		existing, err := s.runs.Get(ctx, runID)
		if err == nil {
			return &Result{RunID: existing.ID, ThreadID: existing.ThreadID, Status: existing.Status}, nil
		}
	}

	agent, err := s.agents.GetOrCreateSupervisor(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("resolve supervisor agent: %w", err)
	}
	thread, err := s.threads.GetOrCreateSupervisorThread(ctx, agent.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve supervisor thread: %w", err)
	}
	run, err := s.runs.Create(ctx, agent.ID, thread.ID, ownerID, runs.TriggerAPI)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	if _, err := s.threads.AppendUserMessage(ctx, thread.ID, task); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	s.idempotency.Put(idempotencyKey, run.ID, now)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.trackPending(run.ID, cancel)
	go func() {
		defer s.clearPending(run.ID)
		if _, err := s.runTurn(runCtx, agent.ID, thread.ID, run.ID, ownerID); err != nil {
			s.log.Error("supervisor turn failed", slog.String("run_id", run.ID), slog.String("error", err.Error()))
		}
	}()

	return &Result{RunID: run.ID, ThreadID: thread.ID, Status: runs.StatusRunning}, nil
}

// RunSupervisor re-enters the turn loop for an existing run — used by
// the Resume Controller once a worker result has been appended to the
// thread as a tool message.
func (s *Service) RunSupervisor(ctx context.Context, ownerID, agentID, threadID, runID string) (*Result, error) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.trackPending(runID, cancel)
	defer s.clearPending(runID)
	return s.runTurn(runCtx, agentID, threadID, runID, ownerID)
}

// runTurn performs one bounded LLM turn and interprets the result.
func (s *Service) runTurn(ctx context.Context, agentID, threadID, runID, ownerID string) (*Result, error) {
	agent, err := s.agents.Get(ctx, agentID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load agent: %w", err)
	}

	s.publish(ctx, runID, ownerID, sse.EventSupervisorStarted, map[string]any{"run_id": runID})

	history, err := s.threads.History(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	// BuildMessageArray applies the cache-optimized layout (system+skills
	// -> history -> tool messages -> connector status -> memory recall ->
	// current time). The ADK runner keeps its own session-scoped history
	// and takes the static system instruction separately, so here only
	// the conversation entries of the built array (conversationOnly, then
	// priorTurns) become the turn's History; the system/dynamic-context
	// entries are not repeated into the ADK session, and the turn input
	// is the latest user message from the stored history.
	messages, err := threads.BuildMessageArray(ctx, history, threads.BuilderOptions{
		SystemPrompt: agent.SystemInstruction,
		OwnerID:      ownerID,
		AgentID:      agentID,
	})
	if err != nil {
		return nil, fmt.Errorf("build message array: %w", err)
	}

	var spawned spawnState
	spawnTool, err := s.buildSpawnWorkerTool(ownerID, runID, &spawned)
	if err != nil {
		return nil, fmt.Errorf("build spawn_worker tool: %w", err)
	}

	turnCtx, cancelTurn := context.WithTimeout(ctx, s.cfg.SupervisorTimeout)
	defer cancelTurn()

	s.publish(ctx, runID, ownerID, sse.EventSupervisorThinking, map[string]any{"run_id": runID})

	turn, turnErr := s.llm.Turn(turnCtx, llmclient.TurnRequest{
		ModelName:   agent.Model,
		Instruction: agent.SystemInstruction,
		History:     toLLMHistory(priorTurns(conversationOnly(messages))),
		UserText:    lastUserContent(history),
		Tools:       []tool.Tool{spawnTool},
		Stop:        spawned.Requested,
	})

	if turnErr != nil {
		if errors.Is(turnCtx.Err(), context.DeadlineExceeded) {
			return s.deferRun(ctx, runID, ownerID)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return s.finishCancelled(ctx, runID, ownerID)
		}
		_, _ = s.runs.Transition(ctx, runID, runs.StatusFailed, turnErr.Error())
		s.publish(ctx, runID, ownerID, sse.EventError, map[string]any{"run_id": runID, "error": turnErr.Error()})
		return nil, turnErr
	}

	if jobID, ok := spawned.JobID(); ok {
		return s.suspendForWorker(ctx, threadID, runID, ownerID, jobID)
	}

	return s.completeRun(ctx, threadID, runID, ownerID, turn.Text)
}

func (s *Service) completeRun(ctx context.Context, threadID, runID, ownerID, text string) (*Result, error) {
	if _, err := s.threads.AppendAssistantMessage(ctx, threadID, text, nil); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}
	if _, err := s.runs.Transition(ctx, runID, runs.StatusSuccess, ""); err != nil {
		return nil, fmt.Errorf("transition to success: %w", err)
	}
	s.publish(ctx, runID, ownerID, sse.EventSupervisorComplete, map[string]any{
		"run_id": runID, "status": "success", "response": text,
	})
	return &Result{RunID: runID, Status: runs.StatusSuccess, Response: text}, nil
}

// suspendForWorker records the pending tool call against the assistant
// message so the Resume Controller can later match the worker's result
// back to it by tool_call_id. The worker job id doubles as that
// tool_call_id — a deliberate simplification over minting a separate
// correlation id, since the two are already in 1:1 correspondence.
func (s *Service) suspendForWorker(ctx context.Context, threadID, runID, ownerID, jobID string) (*Result, error) {
	toolCall := threads.ToolCall{ID: jobID, Name: toolNameSpawnWorker}
	if _, err := s.threads.AppendAssistantMessage(ctx, threadID, "", []threads.ToolCall{toolCall}); err != nil {
		return nil, fmt.Errorf("append tool-call message: %w", err)
	}
	if _, err := s.runs.Transition(ctx, runID, runs.StatusWaiting, ""); err != nil {
		return nil, fmt.Errorf("transition to waiting: %w", err)
	}
	s.publish(ctx, runID, ownerID, sse.EventWorkerSpawned, map[string]any{"run_id": runID, "job_id": jobID})
	return &Result{RunID: runID, Status: runs.StatusWaiting, Suspended: true}, nil
}

func (s *Service) deferRun(ctx context.Context, runID, ownerID string) (*Result, error) {
	if _, err := s.runs.Transition(ctx, runID, runs.StatusDeferred, "supervisor turn exceeded its timeout"); err != nil {
		return nil, fmt.Errorf("transition to deferred: %w", err)
	}
	s.publish(ctx, runID, ownerID, sse.EventSupervisorDeferred, map[string]any{"run_id": runID})
	return &Result{RunID: runID, Status: runs.StatusDeferred}, nil
}

func (s *Service) finishCancelled(ctx context.Context, runID, ownerID string) (*Result, error) {
	if _, err := s.runs.Transition(ctx, runID, runs.StatusCancelled, "cancelled"); err != nil {
		return nil, fmt.Errorf("transition to cancelled: %w", err)
	}
	s.publish(ctx, runID, ownerID, sse.EventSupervisorComplete, map[string]any{"run_id": runID, "status": "cancelled"})
	return &Result{RunID: runID, Status: runs.StatusCancelled}, nil
}

// Cancel transitions runID to CANCELLED unless it is already terminal,
// in which case it is a no-op that returns the current status. A
// best-effort cooperative cancel interrupts the in-flight LLM call.
func (s *Service) Cancel(ctx context.Context, runID, ownerID string) (*Result, error) {
	run, err := s.runs.GetOwned(ctx, runID, ownerID)
	if err != nil {
		return nil, err
	}
	if run.Status.IsTerminal() {
		return &Result{RunID: run.ID, Status: run.Status}, nil
	}

	s.pendingMu.Lock()
	cancel, ok := s.pending[runID]
	s.pendingMu.Unlock()
	if ok {
		cancel()
	}

	cancelCtx, cancelTimeout := context.WithTimeout(ctx, time.Second)
	defer cancelTimeout()
	return s.finishCancelled(cancelCtx, runID, ownerID)
}

func (s *Service) trackPending(runID string, cancel context.CancelFunc) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending[runID] = cancel
}

func (s *Service) clearPending(runID string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	delete(s.pending, runID)
}

func (s *Service) publish(ctx context.Context, runID, ownerID string, eventType sse.EventType, payload map[string]any) {
	if _, err := s.bus.Emit(ctx, runID, ownerID, eventType, payload); err != nil {
		s.log.Warn("failed to publish supervisor event",
			slog.String("event_type", string(eventType)),
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
	}
}

// buildSpawnWorkerTool returns the one built-in supervisor tool: handing
// a task off to a background worker. Enqueuing happens synchronously in
// the tool handler itself, exactly where ask_user-style tools request
// their own suspension in the teacher's agent executor.
func (s *Service) buildSpawnWorkerTool(ownerID, runID string, state *spawnState) (tool.Tool, error) {
	return functiontool.New(
		functiontool.Config{
			Name:        toolNameSpawnWorker,
			Description: "Delegate a task to a background worker agent. Use this for anything that requires running tools, browsing, or multi-step execution outside this conversation.",
		},
		func(toolCtx tool.Context, args map[string]any) (map[string]any, error) {
			task, _ := args["task"].(string)
			if task == "" {
				return map[string]any{"error": "task is required"}, nil
			}
			model, _ := args["model"].(string)
			if model == "" {
				model = s.cfg.LLM.Model
			}

			job, err := s.queue.Enqueue(toolCtx, workerqueue.EnqueueInput{
				OwnerID:         ownerID,
				SupervisorRunID: runID,
				Task:            task,
				Model:           model,
			})
			if err != nil {
				return map[string]any{"error": err.Error()}, nil
			}

			state.Request(job.ID)
			return map[string]any{"job_id": job.ID, "status": "queued"}, nil
		},
	)
}

// conversationOnly drops the entries BuildMessageArray prepends/appends
// around the actual conversation (system prompt, dynamic context,
// current-time stamp) since those are covered by Instruction or are out
// of scope for this turn's ADK session replay.
func conversationOnly(messages []threads.Message) []threads.Message {
	out := make([]threads.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == threads.RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}

// priorTurns drops the trailing user message: that message is the
// current turn's input and is sent separately as UserText, not replayed
// as prior session history.
func priorTurns(messages []threads.Message) []threads.Message {
	if len(messages) > 0 && messages[len(messages)-1].Role == threads.RoleUser {
		return messages[:len(messages)-1]
	}
	return messages
}

func toLLMHistory(messages []threads.Message) []llmclient.Message {
	out := make([]llmclient.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, llmclient.Message{Role: string(m.Role), Text: m.Content})
	}
	return out
}

// lastUserContent returns the most recent non-internal user message,
// the actual turn input handed to the ADK runner separately from the
// replayed session history.
func lastUserContent(history []*threads.ThreadMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.Role == threads.RoleUser && !m.Internal {
			return m.Content
		}
	}
	return ""
}
