package threads

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the speaker of a ThreadMessage.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Thread is an ordered conversation attached to an agent.
type Thread struct {
	bun.BaseModel `bun:"table:threads,alias:th"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	AgentID   string    `bun:"agent_id,notnull,type:uuid" json:"agentId"`
	Title     string    `bun:"title,notnull,default:''" json:"title"`
	Active    bool      `bun:"active,notnull,default:true" json:"active"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// ToolCall mirrors the shape of a single tool invocation requested by an
// assistant message.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ThreadMessage is one entry in a Thread.
type ThreadMessage struct {
	bun.BaseModel `bun:"table:thread_messages,alias:tm"`

	ID         string     `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	ThreadID   string     `bun:"thread_id,notnull,type:uuid" json:"threadId"`
	Role       Role       `bun:"role,notnull" json:"role"`
	Content    string     `bun:"content,notnull,default:''" json:"content"`
	ToolCalls  []ToolCall `bun:"tool_calls,type:jsonb" json:"toolCalls,omitempty"`
	ToolCallID string     `bun:"tool_call_id,nullzero" json:"toolCallId,omitempty"`
	SentAt     time.Time  `bun:"sent_at,nullzero,notnull,default:current_timestamp" json:"sentAt"`
	ParentID   string     `bun:"parent_id,nullzero,type:uuid" json:"parentId,omitempty"`
	Processed  bool       `bun:"processed,notnull,default:false" json:"processed"`
	Internal   bool       `bun:"internal,notnull,default:false" json:"internal"`
}

// HasToolCalls reports whether an assistant message carries tool calls.
func (m *ThreadMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}
