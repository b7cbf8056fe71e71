package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/storage/database/inmem"
)

func newTestService(t *testing.T) (*auth.Service, *inmem.DB, school.Repository) {
	t.Helper()
	db := inmem.NewDB()
	conf := &core.Config{SecretKey: "test-secret-key"}
	svc := auth.NewService(inmem.NewIdentityRepository(db), inmem.NewTokenRepository(db), conf)
	return svc, db, inmem.NewSchoolRepository(db)
}

func createSchool(t *testing.T, repo school.Repository, name, email, pwd string) school.School {
	t.Helper()
	sch := school.School{Name: name, Email: email}
	if err := sch.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	sch, err := repo.CreateSchool(sch)
	if err != nil {
		t.Fatalf("CreateSchool(): %v", err)
	}
	return sch
}

func Test_Service_Authenticate(t *testing.T) {
	svc, _, repo := newTestService(t)
	sch := createSchool(t, repo, "Green Hills", "green@hills.cd", "s3cret!")

	t.Run("ok", func(t *testing.T) {
		prin, err := svc.Authenticate(auth.KindSchool, "green@hills.cd", "s3cret!")
		if err != nil {
			t.Fatalf("Authenticate(): %v", err)
		}
		assert.Equal(t, auth.KindSchool, prin.Kind)
		assert.Equal(t, sch.ID, prin.ID)
		assert.Equal(t, sch.ID, prin.SchoolScope())
	})

	t.Run("email is cleaned and lowered", func(t *testing.T) {
		_, err := svc.Authenticate(auth.KindSchool, "  GREEN@Hills.cd ", "s3cret!")
		assert.NoError(t, err)
	})

	// an unknown identifier and a bad password must be told apart by no one
	t.Run("unknown identifier", func(t *testing.T) {
		_, err := svc.Authenticate(auth.KindSchool, "nobody@hills.cd", "s3cret!")
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})
	t.Run("bad password", func(t *testing.T) {
		_, err := svc.Authenticate(auth.KindSchool, "green@hills.cd", "wrong")
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		_, err := svc.Authenticate(auth.KindTeacher, "green@hills.cd", "s3cret!")
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})
}

func Test_Service_tokenLifecycle(t *testing.T) {
	svc, _, repo := newTestService(t)
	sch := createSchool(t, repo, "Green Hills", "green@hills.cd", "s3cret!")

	prin, err := svc.Authenticate(auth.KindSchool, "green@hills.cd", "s3cret!")
	if err != nil {
		t.Fatalf("Authenticate(): %v", err)
	}

	token, err := svc.IssueToken(prin, "api")
	if err != nil {
		t.Fatalf("IssueToken(): %v", err)
	}
	assert.Contains(t, token, "|")

	t.Run("resolve", func(t *testing.T) {
		got, err := svc.ResolveToken(token)
		if err != nil {
			t.Fatalf("ResolveToken(): %v", err)
		}
		assert.Equal(t, auth.KindSchool, got.Kind)
		assert.Equal(t, sch.ID, got.ID)
	})

	t.Run("tampered secret", func(t *testing.T) {
		id, _, _ := strings.Cut(token, "|")
		_, err := svc.ResolveToken(id + "|" + strings.Repeat("x", 43))
		assert.Equal(t, auth.ErrInvalidToken, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := svc.ResolveToken("not-a-token")
		assert.Equal(t, auth.ErrInvalidToken, err)
	})

	t.Run("multiple live tokens", func(t *testing.T) {
		token2, err := svc.IssueToken(prin, "second")
		if err != nil {
			t.Fatalf("IssueToken(): %v", err)
		}
		for _, tok := range []string{token, token2} {
			if _, err = svc.ResolveToken(tok); err != nil {
				t.Errorf("ResolveToken(%q): %v", tok, err)
			}
		}
	})

	t.Run("revoke", func(t *testing.T) {
		if err := svc.RevokeToken(token); err != nil {
			t.Fatalf("RevokeToken(): %v", err)
		}
		_, err := svc.ResolveToken(token)
		assert.Equal(t, auth.ErrInvalidToken, err)
	})

	t.Run("revoke all", func(t *testing.T) {
		if err := svc.RevokePrincipalTokens(auth.KindSchool, sch.ID); err != nil {
			t.Fatalf("RevokePrincipalTokens(): %v", err)
		}
		token3, err := svc.IssueToken(prin, "api")
		if err != nil {
			t.Fatalf("IssueToken(): %v", err)
		}
		if err = svc.RevokePrincipalTokens(auth.KindSchool, sch.ID); err != nil {
			t.Fatalf("RevokePrincipalTokens(): %v", err)
		}
		_, err = svc.ResolveToken(token3)
		assert.Equal(t, auth.ErrInvalidToken, err)
	})
}

func Test_Service_ResolveToken_deadPrincipal(t *testing.T) {
	svc, _, repo := newTestService(t)
	sch := createSchool(t, repo, "Green Hills", "green@hills.cd", "s3cret!")

	tch := school.Teacher{Name: "Mr. Kalala", Email: "kalala@hills.cd", SchoolID: sch.ID}
	if err := tch.SetPassword("s3cret!"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	tch, err := repo.CreateTeacher(tch)
	if err != nil {
		t.Fatalf("CreateTeacher(): %v", err)
	}

	prin, err := svc.Authenticate(auth.KindTeacher, "kalala@hills.cd", "s3cret!")
	if err != nil {
		t.Fatalf("Authenticate(): %v", err)
	}
	token, err := svc.IssueToken(prin, "api")
	if err != nil {
		t.Fatalf("IssueToken(): %v", err)
	}

	// kill the principal row; the token binding dies with it
	if err = repo.DeleteTeacher(sch.ID, tch.ID); err != nil {
		t.Fatalf("DeleteTeacher(): %v", err)
	}

	_, err = svc.ResolveToken(token)
	assert.Equal(t, auth.ErrInvalidToken, err)
}
