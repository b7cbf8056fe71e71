package auth

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Principal kinds. Capability sets per kind are strictly disjoint: a token
// bound to one kind never authorizes another kind's operations.
const (
	KindSuperAdmin Kind = "superadmin"
	KindSchool     Kind = "school"
	KindTeacher    Kind = "teacher"
	KindStudent    Kind = "student"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrIdentityNotFound   = errors.New("identity not found")
)

type Kind string

func (k Kind) Valid() bool {
	switch k {
	case KindSuperAdmin, KindSchool, KindTeacher, KindStudent:
		return true
	}
	return false
}

// Identity is the credential-bearing view of a principal, common to all kinds.
type Identity struct {
	ID           int
	Name         string
	Email        string
	PasswordHash []byte
	SchoolID     int // owning school; 0 for superadmins and schools
}

func (idn Identity) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(idn.PasswordHash, []byte(pwd))
}

// SuperAdmin has global authority and no ownership scope. Records are seeded
// at bootstrap (migration or admin CLI), never created through the API.
type SuperAdmin struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"` // free-form identifier, not necessarily an email
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (sa *SuperAdmin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	sa.PasswordHash = hash
	return nil
}

// Principal is an authenticated actor: exactly one kind, exactly one id.
type Principal struct {
	Kind     Kind   `json:"kind"`
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	SchoolID int    `json:"-"`
}

// SchoolScope returns the id of the school whose rows this principal may touch.
// A school scopes to itself; teachers and students to their owning school.
func (p Principal) SchoolScope() int {
	if p.Kind == KindSchool {
		return p.ID
	}
	return p.SchoolID
}

// Token is an issued bearer token at rest; only the digest of the secret part
// is ever stored. Tokens are long-lived until explicitly revoked.
type Token struct {
	ID          int64
	Kind        Kind
	PrincipalID int
	Name        string
	Digest      string
	CreatedAt   time.Time // UTC
}

type (
	// IdentityRepository looks up credential records per kind.
	// Implementations must return ErrIdentityNotFound on a miss.
	IdentityRepository interface {
		GetIdentityByEmail(kind Kind, email string) (Identity, error)
		GetIdentityByID(kind Kind, id int) (Identity, error)
	}

	// TokenRepository persists bearer token bindings.
	// Implementations must return ErrInvalidToken on a miss.
	TokenRepository interface {
		CreateToken(tok Token) (Token, error)
		GetTokenByID(id int64) (Token, error)
		DeleteToken(id int64) error
		DeletePrincipalTokens(kind Kind, principalID int) error
	}
)
