package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetCaller_and_Caller(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, Caller(ctx))

	ctx2 := SetCaller(ctx, "3f2a9c01")
	assert.Equal(t, "3f2a9c01", Caller(ctx2))
	assert.Empty(t, Caller(ctx))

	ctx3 := SetCaller(ctx2, "a1b2c3d4")
	assert.Equal(t, "a1b2c3d4", Caller(ctx3))
	assert.Equal(t, "3f2a9c01", Caller(ctx2))
}
