package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/angelmondragon/pressing-admin/internal/validation"
	"github.com/angelmondragon/pressing-admin/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
	"github.com/angelmondragon/pressing-admin/pkg/models"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
	mePath     = "/auth/me"
)

// TokenStore persists the session token obtained at login.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Service signs operators in and out.
type Service interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.Utilisateur, error)
}

// Credentials are the login form values.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (c Credentials) Validate() validation.Violations {
	c.Email = strings.TrimSpace(c.Email)
	return validation.Struct(c)
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token string              `json:"-"`
	User  *models.Utilisateur `json:"user,omitempty"`
}

type service struct {
	api    apiclient.Requester
	tokens TokenStore
	logg   *logger.Logger
}

// NewService wires the auth service. logg may be nil.
func NewService(api apiclient.Requester, tokens TokenStore, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	if tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "token store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{api: api, tokens: tokens, logg: logg}, nil
}

func (s *service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if v := creds.Validate(); !v.Empty() {
		return nil, v.Err()
	}
	env, err := s.api.Post(ctx, loginPath, creds)
	if err != nil {
		return nil, err
	}
	result, err := decodeLogin(env.Data)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, result.Token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting session")
	}
	if result.User != nil {
		ctx = s.logg.WithUserID(ctx, result.User.Email)
	}
	s.logg.Info(ctx, "operator signed in")
	return result, nil
}

// Logout notifies the backend and always clears the local session, even when the call fails.
func (s *service) Logout(ctx context.Context) error {
	_, callErr := s.api.Post(ctx, logoutPath, nil, apiclient.WithRetries(0))
	if callErr != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", callErr.Error()), "backend logout failed")
	}
	if err := s.tokens.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing session")
	}
	return nil
}

func (s *service) Me(ctx context.Context) (*models.Utilisateur, error) {
	user, err := apiclient.GetData[models.Utilisateur](ctx, s.api, mePath)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type loginPayload struct {
	Token       json.RawMessage     `json:"token"`
	AccessToken string              `json:"access_token"`
	User        *models.Utilisateur `json:"user"`
}

// decodeLogin accepts a bare token string, {token: "..."}, {token: {token: "..."}} or
// {access_token: "..."}.
func decodeLogin(raw json.RawMessage) (*LoginResult, error) {
	raw = bytes.TrimSpace(raw)
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil && bare != "" {
		return &LoginResult{Token: bare}, nil
	}
	var payload loginPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unexpected login response")
	}
	token := payload.AccessToken
	if len(payload.Token) > 0 {
		var direct string
		if err := json.Unmarshal(payload.Token, &direct); err == nil {
			token = direct
		} else {
			var nested struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(payload.Token, &nested); err == nil {
				token = nested.Token
			}
		}
	}
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "login response carries no token")
	}
	return &LoginResult{Token: token, User: payload.User}, nil
}
