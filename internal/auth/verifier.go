// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/goodtimes-app/goodtimes/internal/config"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// Identity is a verified external identity, as asserted by the OIDC
// provider's ID token.
type Identity struct {
	Subject   string
	Email     string
	Username  string
	FirstName string
	LastName  string
	AvatarURL string
}

// IdentityVerifier verifies a provider ID token and extracts the identity.
// The login handler depends on this interface so tests can stub the
// provider.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, rawToken string) (*Identity, error)
}

// OIDCVerifier verifies ID tokens against the configured issuer using the
// certified zitadel/oidc relying party (discovery, JWKS, issuer, audience,
// expiry and algorithm checks all included).
type OIDCVerifier struct {
	relyingParty rp.RelyingParty
}

// NewOIDCVerifier discovers the issuer and prepares the verifier. No
// redirect URL is registered: this service only consumes ID tokens obtained
// by the frontend's own login flow.
func NewOIDCVerifier(ctx context.Context, cfg *config.AuthConfig) (*OIDCVerifier, error) {
	if cfg.OIDCIssuer == "" {
		return nil, fmt.Errorf("auth.oidc_issuer is required")
	}
	if cfg.OIDCClientID == "" {
		return nil, fmt.Errorf("auth.oidc_client_id is required")
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.OIDCIssuer,
		cfg.OIDCClientID,
		"", // no client secret: ID-token verification only
		"", // no redirect URL
		[]string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC relying party: %w", err)
	}

	return &OIDCVerifier{relyingParty: relyingParty}, nil
}

// VerifyIDToken verifies a raw ID token and maps its claims to an Identity.
func (v *OIDCVerifier) VerifyIDToken(ctx context.Context, rawToken string) (*Identity, error) {
	verifier := v.relyingParty.IDTokenVerifier()
	if verifier == nil {
		return nil, fmt.Errorf("OIDC verifier not initialized")
	}

	claims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, rawToken, verifier)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	return identityFromClaims(claims), nil
}

// identityFromClaims maps provider claims to an Identity, deriving a
// username when the provider sends none.
func identityFromClaims(claims *oidc.IDTokenClaims) *Identity {
	identity := &Identity{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Username:  claims.PreferredUsername,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		AvatarURL: claims.Picture,
	}
	if identity.Username == "" {
		identity.Username = usernameFromEmail(claims.Email)
	}
	if identity.Username == "" {
		identity.Username = claims.Subject
	}
	return identity
}

func usernameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return ""
	}
	return local
}

// UserFromIdentity shapes a verified identity into the user record
// provisioned on first login.
func UserFromIdentity(identity *Identity) *models.User {
	return &models.User{
		Subject:   identity.Subject,
		Username:  identity.Username,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		AvatarURL: identity.AvatarURL,
	}
}
