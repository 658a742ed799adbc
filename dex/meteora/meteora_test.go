package meteora

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solanum-labs/arbscan/types"
)

func TestFetchPoolsReturnsEmptySnapshot(t *testing.T) {
	c := New(nil)
	assert.Equal(t, string(types.ExchangeMeteora), c.Name())

	pools, err := c.FetchPools(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pools)
}

func TestFetchPoolsHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).FetchPools(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
