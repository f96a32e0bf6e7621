package threads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("thread not found")

// Repository persists Thread and ThreadMessage records.
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Thread, error) {
	t := new(Thread)
	err := r.db.NewSelect().Model(t).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get thread by id: %w", err)
	}
	return t, nil
}

// GetActiveForAgent returns the agent's long-lived active thread, if any.
func (r *Repository) GetActiveForAgent(ctx context.Context, agentID string) (*Thread, error) {
	t := new(Thread)
	err := r.db.NewSelect().
		Model(t).
		Where("agent_id = ?", agentID).
		Where("active = true").
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active thread for agent: %w", err)
	}
	return t, nil
}

func (r *Repository) Create(ctx context.Context, t *Thread) error {
	if _, err := r.db.NewInsert().Model(t).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("create thread: %w", err)
	}
	return nil
}

// AppendMessage inserts a new message at the end of the thread.
func (r *Repository) AppendMessage(ctx context.Context, m *ThreadMessage) error {
	if _, err := r.db.NewInsert().Model(m).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("append thread message: %w", err)
	}
	return nil
}

// History returns every message in the thread in chronological order.
func (r *Repository) History(ctx context.Context, threadID string) ([]*ThreadMessage, error) {
	var msgs []*ThreadMessage
	err := r.db.NewSelect().
		Model(&msgs).
		Where("thread_id = ?", threadID).
		Order("sent_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load thread history: %w", err)
	}
	return msgs, nil
}

// LastAssistantWithToolCalls returns the most recent assistant message
// that issued tool calls, used as the Resume Controller's fallback match.
func (r *Repository) LastAssistantWithToolCalls(ctx context.Context, threadID string) (*ThreadMessage, error) {
	m := new(ThreadMessage)
	err := r.db.NewSelect().
		Model(m).
		Where("thread_id = ?", threadID).
		Where("role = ?", RoleAssistant).
		Where("tool_calls IS NOT NULL AND tool_calls != '[]'").
		Order("sent_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find last assistant message with tool calls: %w", err)
	}
	return m, nil
}

// GetOrCreateToolMessage finds an existing tool message for
// (thread_id, tool_call_id) or creates it, relying on a unique DB
// constraint + ON CONFLICT DO NOTHING so concurrent resume triggers for
// the same worker never double-inject the tool result.
func (r *Repository) GetOrCreateToolMessage(ctx context.Context, m *ThreadMessage) (*ThreadMessage, error) {
	_, err := r.db.NewInsert().
		Model(m).
		On("CONFLICT (thread_id, tool_call_id) WHERE role = 'tool' DO NOTHING").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("get or create tool message: %w", err)
	}
	if m.ID != "" {
		return m, nil
	}

	existing := new(ThreadMessage)
	err = r.db.NewSelect().
		Model(existing).
		Where("thread_id = ?", m.ThreadID).
		Where("tool_call_id = ?", m.ToolCallID).
		Where("role = ?", RoleTool).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch existing tool message: %w", err)
	}
	return existing, nil
}

// MarkProcessed flags a message as already fed into the LLM.
func (r *Repository) MarkProcessed(ctx context.Context, id string) error {
	_, err := r.db.NewUpdate().
		Model((*ThreadMessage)(nil)).
		Set("processed = true").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark message processed: %w", err)
	}
	return nil
}
