package threads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cipher982/zerg/pkg/logger"
)

// Service is the domain-facing API for thread resolution and message
// bookkeeping.
type Service struct {
	repo *Repository
	log  *slog.Logger

	// agentLocks serializes GetOrCreateSupervisorThread per agent so two
	// concurrent first-contact calls never create two long-lived threads
	// for the same supervisor agent.
	agentLocks sync.Map // map[string]*sync.Mutex
}

func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log.With(logger.Scope("threads"))}
}

func (s *Service) lockFor(agentID string) *sync.Mutex {
	v, _ := s.agentLocks.LoadOrStore(agentID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// GetOrCreateSupervisorThread returns the agent's singleton active
// thread, lazily creating it under a per-agent lock.
func (s *Service) GetOrCreateSupervisorThread(ctx context.Context, agentID string) (*Thread, error) {
	lock := s.lockFor(agentID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.repo.GetActiveForAgent(ctx, agentID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	t := &Thread{AgentID: agentID, Title: "Supervisor", Active: true}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create supervisor thread: %w", err)
	}
	s.log.Info("created supervisor thread", slog.String("agent_id", agentID), slog.String("thread_id", t.ID))
	return t, nil
}

// AppendUserMessage records an incoming task as a user message.
func (s *Service) AppendUserMessage(ctx context.Context, threadID, content string) (*ThreadMessage, error) {
	m := &ThreadMessage{ThreadID: threadID, Role: RoleUser, Content: content}
	if err := s.repo.AppendMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// AppendAssistantMessage records an assistant turn, optionally carrying
// tool calls that the caller must act on next.
func (s *Service) AppendAssistantMessage(ctx context.Context, threadID, content string, toolCalls []ToolCall) (*ThreadMessage, error) {
	m := &ThreadMessage{ThreadID: threadID, Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
	if err := s.repo.AppendMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// History loads the full conversation for message-array construction.
func (s *Service) History(ctx context.Context, threadID string) ([]*ThreadMessage, error) {
	return s.repo.History(ctx, threadID)
}

// ResolveToolCallParent finds the assistant message that issued
// toolCallID, falling back to the most recent assistant message with
// any tool calls at all.
func (s *Service) ResolveToolCallParent(ctx context.Context, threadID, toolCallID string) (*ThreadMessage, error) {
	history, err := s.repo.History(ctx, threadID)
	if err != nil {
		return nil, err
	}
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.Role != RoleAssistant {
			continue
		}
		for _, tc := range m.ToolCalls {
			if tc.ID == toolCallID {
				return m, nil
			}
		}
	}
	return s.repo.LastAssistantWithToolCalls(ctx, threadID)
}

// GetOrCreateToolMessage resolves the tool-result message for a given
// tool_call_id, creating it linked to parentID if it doesn't exist yet.
func (s *Service) GetOrCreateToolMessage(ctx context.Context, threadID, toolCallID, content, parentID string) (*ThreadMessage, error) {
	m := &ThreadMessage{
		ThreadID:   threadID,
		Role:       RoleTool,
		Content:    content,
		ToolCallID: toolCallID,
		ParentID:   parentID,
	}
	return s.repo.GetOrCreateToolMessage(ctx, m)
}
