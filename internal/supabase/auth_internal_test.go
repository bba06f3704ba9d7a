package supabase

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"elite-decor-web/internal/apperr"
)

func TestClassifyAuthError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want *apperr.Error
	}{
		{"bad password", errors.New("response status code 400: {\"error\":\"invalid_grant\",\"error_description\":\"Invalid login credentials\"}"), apperr.ErrInvalidCredentials},
		{"duplicate", errors.New("response status code 422: User already registered"), apperr.ErrDuplicateRegistration},
		{"duplicate by code", errors.New(`response status code 422: {"code":422,"error_code":"email_exists","msg":"Email address already exists"}`), apperr.ErrDuplicateRegistration},
		{"expired", errors.New("response status code 401: JWT expired"), apperr.ErrSessionExpired},
		{"unreachable", &url.Error{Op: "Post", URL: "https://x.supabase.co", Err: errors.New("dial tcp: i/o timeout")}, apperr.ErrNetworkUnavailable},
		{"server down", errors.New("response status code 503: unavailable"), apperr.ErrNetworkUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, errors.Is(classifyAuthError(tc.err), tc.want))
		})
	}
}

func TestClassifyAuthError_OtherRejectedSignUpIsValidation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"weak password", errors.New(`response status code 422: {"code":422,"error_code":"weak_password","msg":"Password should be at least 6 characters."}`), "Password should be at least 6 characters."},
		{"bad email", errors.New("response status code 422: Unable to validate email address: invalid format"), "Unable to validate email address: invalid format"},
		{"empty body", errors.New("response status code 422: {}"), "sign-up was rejected"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyAuthError(tc.err)
			assert.False(t, errors.Is(err, apperr.ErrDuplicateRegistration))
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tc.want, apperr.MessageOf(err))
		})
	}
}

func TestClassifyAuthError_Unknown(t *testing.T) {
	err := classifyAuthError(errors.New("weird"))
	assert.Equal(t, apperr.KindUnknown, apperr.KindOf(err))
	assert.Nil(t, classifyAuthError(nil))
}

func TestIdentityFromMetadataFallbacks(t *testing.T) {
	assert.Equal(t, "Ava", metaString(map[string]interface{}{"name": "Ava"}, metaDisplayName, "name"))
	assert.Equal(t, "", metaString(nil, metaDisplayName))
}
