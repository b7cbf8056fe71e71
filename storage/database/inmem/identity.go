package inmem

import (
	"time"

	"github.com/trezcool/darasa/core/auth"
)

type identityRepository struct {
	db *DB
}

var _ auth.IdentityRepository = (*identityRepository)(nil)

func NewIdentityRepository(db *DB) *identityRepository {
	return &identityRepository{db: db}
}

func (repo *identityRepository) GetIdentityByEmail(kind auth.Kind, email string) (auth.Identity, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	switch kind {
	case auth.KindSuperAdmin:
		for _, sa := range repo.db.superAdmins {
			if sa.Email == email {
				return auth.Identity{ID: sa.ID, Name: sa.Name, Email: sa.Email, PasswordHash: sa.PasswordHash}, nil
			}
		}
	case auth.KindSchool:
		for _, sch := range repo.db.schools {
			if sch.Email == email {
				return auth.Identity{ID: sch.ID, Name: sch.Name, Email: sch.Email, PasswordHash: sch.PasswordHash}, nil
			}
		}
	case auth.KindTeacher:
		for _, tch := range repo.db.teachers {
			if tch.Email == email {
				return auth.Identity{ID: tch.ID, Name: tch.Name, Email: tch.Email, PasswordHash: tch.PasswordHash, SchoolID: tch.SchoolID}, nil
			}
		}
	case auth.KindStudent:
		for _, std := range repo.db.students {
			if std.Email == email {
				return auth.Identity{ID: std.ID, Name: std.Name, Email: std.Email, PasswordHash: std.PasswordHash, SchoolID: std.SchoolID}, nil
			}
		}
	}
	return auth.Identity{}, auth.ErrIdentityNotFound
}

func (repo *identityRepository) GetIdentityByID(kind auth.Kind, id int) (auth.Identity, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	switch kind {
	case auth.KindSuperAdmin:
		if sa, ok := repo.db.superAdmins[id]; ok {
			return auth.Identity{ID: sa.ID, Name: sa.Name, Email: sa.Email, PasswordHash: sa.PasswordHash}, nil
		}
	case auth.KindSchool:
		if sch, ok := repo.db.schools[id]; ok {
			return auth.Identity{ID: sch.ID, Name: sch.Name, Email: sch.Email, PasswordHash: sch.PasswordHash}, nil
		}
	case auth.KindTeacher:
		if tch, ok := repo.db.teachers[id]; ok {
			return auth.Identity{ID: tch.ID, Name: tch.Name, Email: tch.Email, PasswordHash: tch.PasswordHash, SchoolID: tch.SchoolID}, nil
		}
	case auth.KindStudent:
		if std, ok := repo.db.students[id]; ok {
			return auth.Identity{ID: std.ID, Name: std.Name, Email: std.Email, PasswordHash: std.PasswordHash, SchoolID: std.SchoolID}, nil
		}
	}
	return auth.Identity{}, auth.ErrIdentityNotFound
}

// CreateSuperAdmin inserts a superadmin record; bootstrap/seed path only.
func (repo *identityRepository) CreateSuperAdmin(sa auth.SuperAdmin) (auth.SuperAdmin, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	now := time.Now().UTC()
	if sa.CreatedAt.IsZero() {
		sa.CreatedAt = now
		sa.UpdatedAt = now
	}
	sa.ID = repo.db.nextID()
	repo.db.superAdmins[sa.ID] = &sa
	return sa, nil
}

type tokenRepository struct {
	db *DB
}

var _ auth.TokenRepository = (*tokenRepository)(nil)

func NewTokenRepository(db *DB) *tokenRepository {
	return &tokenRepository{db: db}
}

func (repo *tokenRepository) CreateToken(tok auth.Token) (auth.Token, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tok.ID = repo.db.nextTokenID()
	repo.db.tokens[tok.ID] = &tok
	return tok, nil
}

func (repo *tokenRepository) GetTokenByID(id int64) (auth.Token, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if tok, ok := repo.db.tokens[id]; ok {
		return *tok, nil
	}
	return auth.Token{}, auth.ErrInvalidToken
}

func (repo *tokenRepository) DeleteToken(id int64) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.tokens, id)
	return nil
}

func (repo *tokenRepository) DeletePrincipalTokens(kind auth.Kind, principalID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, tok := range repo.db.tokens {
		if tok.Kind == kind && tok.PrincipalID == principalID {
			delete(repo.db.tokens, id)
		}
	}
	return nil
}
