package shared

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/371050/study-pwa/internal/service/auth"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	generated := GetTraceID(SetTraceID(ctx, ""))
	assert.Len(t, generated, 32)
	assert.NotEqual(t, generated, GetTraceID(SetTraceID(ctx, "")))

	assert.Equal(t, "req-42_a", GetTraceID(SetTraceID(ctx, "req-42_a")))

	for _, bad := range []string{"has space", "semi;colon", strings.Repeat("a", 65)} {
		got := GetTraceID(SetTraceID(ctx, bad))
		assert.NotEqual(t, bad, got)
		assert.Len(t, got, 32)
	}
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	_, ok = ClaimsFromContext(WithClaims(context.Background(), nil))
	assert.False(t, ok)

	claims := &auth.Claims{Subject: "owner"}
	got, ok := ClaimsFromContext(WithClaims(context.Background(), claims))
	assert.True(t, ok)
	assert.Same(t, claims, got)
}
