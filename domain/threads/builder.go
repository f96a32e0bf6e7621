package threads

import (
	"context"
	"fmt"
	"time"
)

// Message is the LLM-facing wire shape of a single turn. It mirrors
// ThreadMessage but drops persistence-only fields (internal, processed).
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
}

// ContextProvider supplies dynamic, per-turn context appended at the end
// of the message array (connector status, memory recall). The core does
// not define how these are computed; a nil provider contributes nothing,
// which is enough to exercise the six-stage layout without any of the
// tool/memory subsystems that sit outside this module's scope.
type ContextProvider interface {
	// BuildContext returns a short text block, or "" to contribute nothing.
	BuildContext(ctx context.Context, ownerID, agentID, query string) (string, error)
}

// BuilderOptions configures one call to BuildMessageArray.
type BuilderOptions struct {
	SystemPrompt     string
	ExtraToolResults []Message
	ConnectorStatus  ContextProvider
	MemoryRecall     ContextProvider
	OwnerID          string
	AgentID          string
	Now              time.Time
}

// BuildMessageArray assembles the cache-optimized layout described in
// the supervisor's message construction step: the most stable content
// goes first so LLM providers can reuse a cached prefix, and everything
// that changes turn-to-turn is appended last.
//
//	[system prompt + skills] -> [conversation history] -> [tool messages]
//	-> [connector status] -> [memory recall] -> [current time]
func BuildMessageArray(ctx context.Context, history []*ThreadMessage, opts BuilderOptions) ([]Message, error) {
	if opts.SystemPrompt == "" {
		return nil, fmt.Errorf("system prompt is required")
	}

	messages := make([]Message, 0, len(history)+len(opts.ExtraToolResults)+4)

	messages = append(messages, Message{Role: RoleSystem, Content: opts.SystemPrompt})

	for _, m := range history {
		if m.Internal {
			continue
		}
		messages = append(messages, Message{
			Role:       m.Role,
			Content:    m.Content,
			ToolCalls:  m.ToolCalls,
			ToolCallID: m.ToolCallID,
		})
	}

	messages = append(messages, opts.ExtraToolResults...)

	lastUserQuery := latestUserQuery(history)

	var dynamic []string
	if opts.ConnectorStatus != nil {
		status, err := opts.ConnectorStatus.BuildContext(ctx, opts.OwnerID, opts.AgentID, lastUserQuery)
		if err != nil {
			return nil, fmt.Errorf("build connector status context: %w", err)
		}
		if status != "" {
			dynamic = append(dynamic, status)
		}
	}
	if opts.MemoryRecall != nil {
		recall, err := opts.MemoryRecall.BuildContext(ctx, opts.OwnerID, opts.AgentID, lastUserQuery)
		if err != nil {
			return nil, fmt.Errorf("build memory recall context: %w", err)
		}
		if recall != "" {
			dynamic = append(dynamic, recall)
		}
	}
	for _, d := range dynamic {
		messages = append(messages, Message{Role: RoleSystem, Content: d})
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	messages = append(messages, Message{
		Role:    RoleSystem,
		Content: fmt.Sprintf("Current time: %s", now.Format(time.RFC3339)),
	})

	return messages, nil
}

func latestUserQuery(history []*ThreadMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.Role == RoleUser && !m.Internal {
			return m.Content
		}
	}
	return ""
}
