package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/models"
)

// Session is what the identity provider hands back after sign-in, sign-up
// or refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Identity     models.Identity
}

// IdentityProvider is the hosted identity service.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, profile models.Profile) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*models.Identity, error)
	UpdateProfile(ctx context.Context, accessToken string, patch models.ProfilePatch) (*models.Identity, error)
}

const (
	metaDisplayName = "full_name"
	metaAvatarURL   = "avatar_url"
)

// GoTrueProvider implements IdentityProvider on Supabase Auth.
// gotrue-go has no context support; ctx is checked before each call only.
type GoTrueProvider struct {
	client gotrue.Client
}

func NewGoTrueProvider(client gotrue.Client) *GoTrueProvider {
	return &GoTrueProvider{client: client}
}

func (p *GoTrueProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := p.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, classifyAuthError(err)
	}
	return sessionFrom(resp.Session), nil
}

func (p *GoTrueProvider) SignUp(ctx context.Context, email, password string, profile models.Profile) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := map[string]interface{}{}
	if profile.DisplayName != "" {
		data[metaDisplayName] = profile.DisplayName
	}
	if profile.AvatarURL != "" {
		data[metaAvatarURL] = profile.AvatarURL
	}

	resp, err := p.client.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     data,
	})
	if err != nil {
		return nil, classifyAuthError(err)
	}
	if resp.Session.AccessToken != "" {
		return sessionFrom(resp.Session), nil
	}

	// Projects with email autoconfirm off return a user but no session.
	signedIn, err := p.SignIn(ctx, email, password)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrConfirmationPending, err)
	}
	return signedIn, nil
}

func (p *GoTrueProvider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if refreshToken == "" {
		return nil, apperr.ErrSessionExpired
	}
	resp, err := p.client.RefreshToken(refreshToken)
	if err != nil {
		mapped := classifyAuthError(err)
		if errors.Is(mapped, apperr.ErrInvalidCredentials) {
			return nil, apperr.Wrap(apperr.ErrSessionExpired, err)
		}
		return nil, mapped
	}
	return sessionFrom(resp.Session), nil
}

func (p *GoTrueProvider) SignOut(ctx context.Context, accessToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.client.WithToken(accessToken).Logout(); err != nil {
		return classifyAuthError(err)
	}
	return nil
}

func (p *GoTrueProvider) CurrentUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := p.client.WithToken(accessToken).GetUser()
	if err != nil {
		mapped := classifyAuthError(err)
		if errors.Is(mapped, apperr.ErrInvalidCredentials) {
			return nil, apperr.Wrap(apperr.ErrSessionExpired, err)
		}
		return nil, mapped
	}
	id := identityFrom(resp.User)
	return &id, nil
}

func (p *GoTrueProvider) UpdateProfile(ctx context.Context, accessToken string, patch models.ProfilePatch) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := map[string]interface{}{}
	if patch.DisplayName != nil {
		data[metaDisplayName] = *patch.DisplayName
	}
	if patch.AvatarURL != nil {
		data[metaAvatarURL] = *patch.AvatarURL
	}

	resp, err := p.client.WithToken(accessToken).UpdateUser(types.UpdateUserRequest{Data: data})
	if err != nil {
		return nil, classifyAuthError(err)
	}
	id := identityFrom(resp.User)
	return &id, nil
}

func sessionFrom(s types.Session) *Session {
	out := &Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Identity:     identityFrom(s.User),
	}
	switch {
	case s.ExpiresAt > 0:
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		out.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return out
}

func identityFrom(u types.User) models.Identity {
	return models.Identity{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: metaString(u.UserMetadata, metaDisplayName, "name"),
		AvatarURL:   metaString(u.UserMetadata, metaAvatarURL, "picture"),
		CreatedAt:   u.CreatedAt,
	}
}

func metaString(meta map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := meta[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// classifyAuthError maps gotrue-go errors, which carry the HTTP status in
// their text ("response status code 400: ..."), to the auth taxonomy.
// providerMessage pulls the human readable part out of a GoTrue error of the
// form "response status code 422: {...}".
func providerMessage(err error) string {
	raw := err.Error()
	if i := strings.Index(raw, "status code "); i >= 0 {
		if j := strings.Index(raw[i:], ": "); j >= 0 {
			raw = raw[i+j+2:]
		}
	}
	raw = strings.TrimSpace(raw)

	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal([]byte(raw), &body) == nil {
		for _, m := range []string{body.Msg, body.Message, body.ErrorDescription} {
			if m != "" {
				return m
			}
		}
	}
	if raw == "" || strings.HasPrefix(raw, "{") {
		return "sign-up was rejected"
	}
	return raw
}

func classifyAuthError(err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return apperr.Wrap(apperr.ErrNetworkUnavailable, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already registered"), strings.Contains(msg, "already been registered"),
		strings.Contains(msg, "already exists"), strings.Contains(msg, "email_exists"):
		return apperr.Wrap(apperr.ErrDuplicateRegistration, err)
	case strings.Contains(msg, "status code 422"):
		rejected := apperr.Validation("", providerMessage(err))
		rejected.Err = err
		return rejected
	case strings.Contains(msg, "invalid login credentials"), strings.Contains(msg, "invalid_grant"),
		strings.Contains(msg, "status code 400"):
		return apperr.Wrap(apperr.ErrInvalidCredentials, err)
	case strings.Contains(msg, "status code 401"), strings.Contains(msg, "status code 403"),
		strings.Contains(msg, "expired"):
		return apperr.Wrap(apperr.ErrSessionExpired, err)
	case strings.Contains(msg, "status code 5"), strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"):
		return apperr.Wrap(apperr.ErrNetworkUnavailable, err)
	}
	return fmt.Errorf("identity provider: %w", err)
}
