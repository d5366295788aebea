package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"taskPlanner/internal/models/user"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const ProviderGoogle = "google"

const defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleUserInfo - ответ userinfo в формате OpenID Connect
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Google - провайдер входа через учётную запись Google
type Google struct {
	conf        *oauth2.Config
	userInfoURL string
}

type Option func(*Google)

// WithEndpoint подменяет адреса авторизации, токена и профиля
func WithEndpoint(endpoint oauth2.Endpoint, userInfoURL string) Option {
	return func(g *Google) {
		g.conf.Endpoint = endpoint
		g.userInfoURL = userInfoURL
	}
}

func NewGoogle(clientID, clientSecret, redirectURL string, opts ...Option) *Google {
	g := &Google{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: defaultUserInfoURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Google) Name() string {
	return ProviderGoogle
}

// AuthCodeURL запрашивает офлайн-доступ и повторное согласие, чтобы получить refresh token
func (g *Google) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

func (g *Google) Exchange(ctx context.Context, code string) (*user.Identity, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("обмен кода авторизации: %w", err)
	}

	info, err := g.userInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("профиль без идентификатора")
	}

	identity := &user.Identity{
		User: user.User{
			Email: info.Email,
			Name:  optional(info.Name),
			Image: optional(info.Picture),
		},
		Account: user.Account{
			Type:              "oauth",
			Provider:          ProviderGoogle,
			ProviderAccountID: info.Sub,
			AccessToken:       optional(token.AccessToken),
			RefreshToken:      optional(token.RefreshToken),
			TokenType:         optional(token.TokenType),
		},
	}
	if !token.Expiry.IsZero() {
		exp := token.Expiry.Unix()
		identity.Account.ExpiresAt = &exp
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		identity.Account.IDToken = optional(idToken)
	}
	if scope, ok := token.Extra("scope").(string); ok {
		identity.Account.Scope = optional(scope)
	}
	return identity, nil
}

func (g *Google) userInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	client := g.conf.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("запрос профиля: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос профиля: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("запрос профиля: статус %d", resp.StatusCode)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("разбор профиля: %w", err)
	}
	return &info, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
