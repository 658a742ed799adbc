// Package meteora registers the Meteora exchange with the snapshot
// collector. Pool layout support is not wired up yet, so the fetcher
// contributes an empty snapshot; the scanner treats a quiet exchange
// the same as any other sparse source.
package meteora

import (
	"context"

	"go.uber.org/zap"

	"github.com/solanum-labs/arbscan/types"
)

// Client is a placeholder fetcher for Meteora pools.
type Client struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{logger: logger}
}

func (c *Client) Name() string {
	return string(types.ExchangeMeteora)
}

// FetchPools returns an empty snapshot until the Meteora pool layout
// is supported.
func (c *Client) FetchPools(ctx context.Context) ([]types.PoolData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.logger.Debug("Meteora pool layout not supported yet, contributing no pools")
	return []types.PoolData{}, nil
}
