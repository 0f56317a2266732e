package auth

import (
	"testing"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	issuer, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue(model.Actor{UserID: 42, Admin: true})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	actor, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, model.Actor{UserID: 42, Admin: true}, actor)
}

func TestParseRejectsBadTokens(t *testing.T) {
	t.Parallel()

	issuer, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewIssuer("other-secret", time.Hour)
	require.NoError(t, err)

	forged, _, err := other.Issue(model.Actor{UserID: 1, Admin: true})
	require.NoError(t, err)
	_, err = issuer.Parse(forged)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewIssuer("secret", time.Minute)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Issue(model.Actor{UserID: 1})
	require.NoError(t, err)
	_, err = issuer.Parse(stale)
	require.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(none)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuerValidates(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer("", time.Hour)
	require.Error(t, err)
	_, err = NewIssuer("secret", 0)
	require.Error(t, err)
}
