package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"evea/internal/config"
)

type googleExchanger struct {
	oauth *oauth2.Config
}

// NewGoogleExchanger returns nil when Google sign-in is not configured.
func NewGoogleExchanger(cfg config.GoogleConfig) GoogleExchanger {
	if !cfg.Enabled() {
		return nil
	}
	return &googleExchanger{oauth: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}}
}

func (g *googleExchanger) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (g *googleExchanger) Exchange(ctx context.Context, code string) (*GoogleIdentity, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, errors.New("token response has no id_token")
	}

	payload, err := idtoken.Validate(ctx, raw, g.oauth.ClientID)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", err)
	}

	id := &GoogleIdentity{Subject: payload.Subject}
	id.Email, _ = payload.Claims["email"].(string)
	id.EmailVerified, _ = payload.Claims["email_verified"].(bool)
	id.Name, _ = payload.Claims["name"].(string)
	id.Picture, _ = payload.Claims["picture"].(string)
	if id.Subject == "" || id.Email == "" {
		return nil, errors.New("id token missing subject or email")
	}
	return id, nil
}
