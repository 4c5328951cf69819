package utils

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCallerContext(t *testing.T) {
	callerID := uuid.New()
	ctx := SetCallerContext(context.Background(), callerID, "buyer@example.com", RoleUser, false)

	t.Run("CallerID", func(t *testing.T) {
		id, ok := GetCallerIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, callerID, id)
	})

	t.Run("CallerID_Missing", func(t *testing.T) {
		_, ok := GetCallerIDFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("Email", func(t *testing.T) {
		assert.Equal(t, "buyer@example.com", GetCallerEmailFromContext(ctx))
	})

	t.Run("Role", func(t *testing.T) {
		assert.Equal(t, RoleUser, GetCallerRoleFromContext(ctx))
		assert.False(t, IsCallerAdmin(ctx))

		adminCtx := SetCallerContext(context.Background(), uuid.New(), "admin@example.com", RoleAdmin, false)
		assert.True(t, IsCallerAdmin(adminCtx))
	})

	t.Run("Suspended", func(t *testing.T) {
		assert.False(t, IsCallerSuspended(ctx))

		suspCtx := SetCallerContext(context.Background(), uuid.New(), "x@example.com", RoleUser, true)
		assert.True(t, IsCallerSuspended(suspCtx))
	})
}

func TestGenerateOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{8}-\d{6}-\d{3}-\d{4}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		num := GenerateOrderNumber()
		assert.Regexp(t, pattern, num)
		seen[num] = true
	}

	// Collisions within a tight loop should be extremely unlikely.
	assert.Greater(t, len(seen), 45)
}
