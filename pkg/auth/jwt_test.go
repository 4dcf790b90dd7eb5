package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "fraudscore-test",
		Expiration: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "analyst@example.com", []string{RoleAnalyst})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "analyst@example.com", claims.Email)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "fraudscore-test", claims.Issuer)
	assert.True(t, claims.HasRole(RoleAnalyst))
	assert.False(t, claims.HasRole(RoleAdmin))
}

func TestValidateToken_Expired(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "s", Expiration: -time.Hour})
	require.NoError(t, err)

	token, err := svc.GenerateToken(uuid.New(), "", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	one, err := NewJWTService(JWTConfig{Secret: "secret-one", Expiration: time.Minute})
	require.NoError(t, err)
	two, err := NewJWTService(JWTConfig{Secret: "secret-two", Expiration: time.Minute})
	require.NoError(t, err)

	token, err := one.GenerateToken(uuid.New(), "", nil)
	require.NoError(t, err)

	_, err = two.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	issuer, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "someone-else", Expiration: time.Minute})
	require.NoError(t, err)
	token, err := issuer.GenerateToken(uuid.New(), "", nil)
	require.NoError(t, err)

	_, err = newTestJWTService(t).ValidateToken(token)
	assert.Error(t, err)
}

func TestRSAModes(t *testing.T) {
	privPEM, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	signer, err := NewJWTService(JWTConfig{PrivateKeyPEM: string(privPEM), Expiration: time.Minute})
	require.NoError(t, err)
	verifier, err := NewJWTService(JWTConfig{PublicKeyPEM: string(pubPEM)})
	require.NoError(t, err)

	userID := uuid.New()
	token, err := signer.GenerateToken(userID, "", []string{RoleService})
	require.NoError(t, err)

	claims, err := verifier.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = verifier.GenerateToken(userID, "", nil)
	assert.ErrorIs(t, err, ErrValidationOnly)
}

func TestNewJWTService_RequiresKeyMaterial(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc.def", token: "abc.def", ok: true},
		{header: "bearer abc", token: "abc", ok: true},
		{header: "Basic abc", ok: false},
		{header: "Bearer ", ok: false},
		{header: "abc", ok: false},
		{header: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t)
	interceptor := UnaryAuthInterceptor(svc, []string{"/grpc.health.v1.Health/Check"})
	userID := uuid.New()

	var seen *Claims
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen, _ = ClaimsFromContext(ctx)
		return "ok", nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/fraudscore.v1.FraudScoringService/Predict"}

	t.Run("missing metadata", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("skipped method", func(t *testing.T) {
		resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, "", nil)
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))

		_, err = interceptor(ctx, nil, info, handler)
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, userID, seen.UserID)
	})

	t.Run("garbage token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := interceptor(ctx, nil, info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}
