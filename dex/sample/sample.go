// Package sample provides a deterministic offline pool snapshot for
// demos and smoke runs. Token mints are the real mainnet mints; pool
// accounts are synthetic. The snapshot plants a two-pool SOL/USDC
// spread and a profitable SOL>RAY>USDC triangle.
package sample

import (
	"context"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/solanum-labs/arbscan/types"
)

var (
	mintSOL  = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	mintUSDC = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	mintUSDT = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	mintRAY  = solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")

	tokenSOL  = types.TokenInfo{Mint: mintSOL, Symbol: "SOL", Decimals: 9}
	tokenUSDC = types.TokenInfo{Mint: mintUSDC, Symbol: "USDC", Decimals: 6}
	tokenUSDT = types.TokenInfo{Mint: mintUSDT, Symbol: "USDT", Decimals: 6}
	tokenRAY  = types.TokenInfo{Mint: mintRAY, Symbol: "RAY", Decimals: 6}
)

// Provider serves the built-in snapshot through the fetcher interface.
type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return "sample"
}

func (p *Provider) FetchPools(_ context.Context) ([]types.PoolData, error) {
	return Snapshot(), nil
}

// Snapshot returns a fresh copy of the built-in pools. Callers may
// mutate the result freely.
func Snapshot() []types.PoolData {
	return []types.PoolData{
		pool(1, types.ExchangeRaydium, tokenSOL, tokenUSDC,
			12_000_000_000_000, 1_860_000_000_000, 25, 155.0, 2_500_000, 3_720_000),
		pool(2, types.ExchangeOrca, tokenSOL, tokenUSDC,
			9_500_000_000_000, 1_501_000_000_000, 30, 158.0, 1_900_000, 3_002_000),
		pool(3, types.ExchangeRaydium, tokenSOL, tokenRAY,
			8_000_000_000_000, 620_000_000_000, 25, 77.5, 640_000, 2_480_000),
		pool(4, types.ExchangeRaydium, tokenRAY, tokenUSDC,
			590_000_000_000, 1_250_000_000_000, 25, 2.1186, 810_000, 2_500_000),
		pool(5, types.ExchangeMeteora, tokenSOL, tokenUSDT,
			6_000_000_000_000, 933_000_000_000, 20, 155.5, 420_000, 1_866_000),
		pool(6, types.ExchangeOrca, tokenUSDC, tokenUSDT,
			2_000_000_000_000, 1_998_000_000_000, 10, 0.999, 5_100_000, 3_998_000),
		pool(7, types.ExchangeRaydium, tokenSOL, tokenUSDT,
			3_000_000_000_000, 468_600_000_000, 25, 156.2, 230_000, 937_200),
	}
}

func pool(id byte, exchange types.Exchange, tokenA, tokenB types.TokenInfo,
	reserveA, reserveB int64, feeBps uint16, price, volume, tvl float64) types.PoolData {

	return types.PoolData{
		Address:  poolAccount(id),
		Exchange: exchange,
		TokenA:   tokenA,
		TokenB:   tokenB,
		ReserveA: big.NewInt(reserveA),
		ReserveB: big.NewInt(reserveB),
		FeeBps:   feeBps,
		Price:    price,
		Volume24: volume,
		TVL:      tvl,
	}
}

func poolAccount(id byte) solana.PublicKey {
	var raw [32]byte
	copy(raw[:], "arbscan/sample/pool")
	raw[31] = id
	return solana.PublicKeyFromBytes(raw[:])
}
