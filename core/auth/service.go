package auth

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type Service struct {
	repo   IdentityRepository
	tokens TokenRepository
	conf   *core.Config
}

func NewService(repo IdentityRepository, tokens TokenRepository, conf *core.Config) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		conf:   conf,
	}
}

// Authenticate checks the submitted credentials against the stored digest of the
// single `kind` record matching `identifier`. An unknown identifier and a bad
// password fail identically so logins cannot be used to enumerate accounts.
func (svc *Service) Authenticate(kind Kind, identifier, password string) (Principal, error) {
	if kind == KindSuperAdmin {
		// superadmin identifiers are free-form strings, matched as stored
		identifier = core.CleanString(identifier)
	} else {
		identifier = core.CleanString(identifier, true /* lower */)
	}

	idn, err := svc.repo.GetIdentityByEmail(kind, identifier)
	if err != nil {
		if errors.Cause(err) == ErrIdentityNotFound {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, errors.Wrap(err, "finding identity by email")
	}
	if err = idn.CheckPassword(password); err != nil {
		return Principal{}, ErrInvalidCredentials
	}
	return svc.principal(kind, idn), nil
}

// IssueToken mints an opaque bearer token bound to the principal. Several live
// tokens per principal may coexist.
func (svc *Service) IssueToken(p Principal, name string) (string, error) {
	secret, err := newTokenSecret()
	if err != nil {
		return "", errors.Wrap(err, "generating token secret")
	}

	tok, err := svc.tokens.CreateToken(Token{
		Kind:        p.Kind,
		PrincipalID: p.ID,
		Name:        name,
		Digest:      digestSecret(secret, svc.conf.SecretKey),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return "", errors.Wrap(err, "storing token")
	}
	return formatToken(tok.ID, secret), nil
}

// ResolveToken maps a plaintext bearer token back to its principal.
// A malformed, unknown, tampered or revoked token is always ErrInvalidToken.
func (svc *Service) ResolveToken(raw string) (Principal, error) {
	id, secret, err := splitToken(raw)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}

	tok, err := svc.tokens.GetTokenByID(id)
	if err != nil {
		if errors.Cause(err) == ErrInvalidToken {
			return Principal{}, ErrInvalidToken
		}
		return Principal{}, errors.Wrap(err, "finding token")
	}
	if !digestsEqual(tok.Digest, digestSecret(secret, svc.conf.SecretKey)) {
		return Principal{}, ErrInvalidToken
	}

	idn, err := svc.repo.GetIdentityByID(tok.Kind, tok.PrincipalID)
	if err != nil {
		if errors.Cause(err) == ErrIdentityNotFound {
			// principal row is gone; the binding is dead
			return Principal{}, ErrInvalidToken
		}
		return Principal{}, errors.Wrap(err, "finding identity by ID")
	}
	return svc.principal(tok.Kind, idn), nil
}

// RevokeToken deletes a single token binding. Revoking an already-dead token
// is not an error.
func (svc *Service) RevokeToken(raw string) error {
	id, _, err := splitToken(raw)
	if err != nil {
		return ErrInvalidToken
	}
	return errors.Wrap(svc.tokens.DeleteToken(id), "deleting token")
}

// RevokePrincipalTokens kills every live token of a principal, eg. after a
// password reset.
func (svc *Service) RevokePrincipalTokens(kind Kind, principalID int) error {
	return errors.Wrap(svc.tokens.DeletePrincipalTokens(kind, principalID), "deleting principal tokens")
}

func (svc *Service) principal(kind Kind, idn Identity) Principal {
	return Principal{
		Kind:     kind,
		ID:       idn.ID,
		Name:     idn.Name,
		Email:    idn.Email,
		SchoolID: idn.SchoolID,
	}
}
