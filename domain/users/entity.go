package users

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the two-level authorization role on the User data model.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User is the tenant's identity record. Every other entity (Agent,
// Thread, AgentRun, WorkerJob) traces ownership back to a User.ID.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string         `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Email     string         `bun:"email,notnull,unique" json:"email"`
	Role      Role           `bun:"role,notnull,default:'USER'" json:"role"`
	Config    map[string]any `bun:"config,type:jsonb,notnull,default:'{}'" json:"config"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
