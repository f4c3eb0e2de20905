package notes

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultNoteTag is applied to notes created without a tag
const DefaultNoteTag = "General"

// Principal is the credential record shared by admins and users
type Principal struct {
	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"date"`
}

// Admin is a principal with access to the management routes
type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:adm"`
	Principal
}

// Base returns the embedded credential record
func (a *Admin) Base() *Principal { return &a.Principal }

// User is a principal owning notes
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	Principal
}

// Base returns the embedded credential record
func (u *User) Base() *Principal { return &u.Principal }

// Note is a user owned note
type Note struct {
	bun.BaseModel `bun:"table:notes,alias:nt"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user"`
	Owner         *User     `bun:"rel:belongs-to,join:user_id=id" json:"owner,omitempty"`
	Title         string    `bun:"title,notnull" json:"title"`
	Description   string    `bun:"description,notnull" json:"description"`
	Tag           string    `bun:"tag,notnull" json:"tag"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"date"`
}

// Info is an admin audit log entry
type Info struct {
	bun.BaseModel `bun:"table:infos,alias:inf"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	AdminID       uuid.UUID `bun:"admin_id,notnull,type:uuid" json:"user"`
	Title         string    `bun:"title,notnull" json:"title"`
	Description   string    `bun:"description,notnull" json:"description"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"date"`
}

// RevokedToken is a denylist entry keyed by jti
type RevokedToken struct {
	bun.BaseModel `bun:"table:revoked_tokens,alias:rvk"`
	TokenID       string     `bun:"token_id,pk" json:"token_id"`
	ExpiresAt     *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	RevokedAt     time.Time  `bun:"revoked_at,notnull" json:"revoked_at"`
}
