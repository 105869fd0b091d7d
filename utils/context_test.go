package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	assert.Empty(t, GetRequestIDFromCtx(context.Background()))

	ctx := NewCtxWithRqID(context.Background())
	rqID := GetRequestIDFromCtx(ctx)
	assert.Len(t, rqID, 36)

	assert.NotEqual(t, rqID, GetRequestIDFromCtx(NewCtxWithRqID(context.Background())))
}
