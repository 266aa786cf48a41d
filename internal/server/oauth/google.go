// Package oauth implements the federated-login provider integration. Only
// Google is supported; the provider hands back a normalized Identity that the
// identity service links to a local account.
package oauth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	sc "github.com/isaidso/auth/internal/server/config"
)

// Identity is the provider's assertion about the user.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	AvatarURL  string
}

// Provider drives an authorization-code flow.
type Provider interface {
	// AuthCodeURL returns the provider's consent page URL for the given
	// anti-forgery state.
	AuthCodeURL(state string) string

	// FetchIdentity exchanges the callback code and returns the asserted
	// identity.
	FetchIdentity(ctx context.Context, code string) (*Identity, error)
}

// GoogleProvider implements Provider against Google's OAuth 2.0 endpoints.
type GoogleProvider struct {
	config *oauth2.Config
}

// exchange is a seam for testing the code exchange.
var exchange = func(cfg *oauth2.Config, ctx context.Context, code string) (*oauth2.Token, error) {
	return cfg.Exchange(ctx, code)
}

func NewGoogleProvider(cfg *sc.Config) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
	}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// idTokenClaims is the subset of the Google ID token this service reads.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// FetchIdentity exchanges the code and extracts identity claims from the ID
// token. The token arrives over TLS directly from Google's token endpoint, so
// its signature is not re-verified here.
func (p *GoogleProvider) FetchIdentity(ctx context.Context, code string) (*Identity, error) {
	token, err := exchange(p.config, ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("token response missing id_token")
	}

	claims := &idTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return nil, fmt.Errorf("parsing id_token: %w", err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("id_token missing subject or email")
	}

	return &Identity{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		AvatarURL:  claims.Picture,
	}, nil
}
