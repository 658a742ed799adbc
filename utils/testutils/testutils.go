package testutils

import (
	"encoding/binary"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/solanum-labs/arbscan/types"
)

// Mint derives a deterministic mint key for tests. Seeds map to
// distinct, never-zero keys.
func Mint(seed uint64) solana.PublicKey {
	var raw [32]byte
	raw[0] = 0xA1
	binary.BigEndian.PutUint64(raw[24:], seed)
	return solana.PublicKeyFromBytes(raw[:])
}

// PoolAccount derives a deterministic pool address in a key space
// disjoint from Mint's.
func PoolAccount(seed uint64) solana.PublicKey {
	var raw [32]byte
	raw[0] = 0xB2
	binary.BigEndian.PutUint64(raw[24:], seed)
	return solana.PublicKeyFromBytes(raw[:])
}

// Token builds a TokenInfo around a deterministic mint.
func Token(seed uint64, symbol string, decimals uint8) types.TokenInfo {
	return types.TokenInfo{
		Mint:     Mint(seed),
		Symbol:   symbol,
		Decimals: decimals,
	}
}

// Sol returns n whole SOL in lamports.
func Sol(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

// Units returns n whole tokens in the smallest unit for decimals.
func Units(n int64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return scale.Mul(scale, big.NewInt(n))
}

// NewPool builds a tradable pool snapshot with the advisory price
// derived from the reserves. Callers overwrite Price or TVL when a test
// needs a stale or shaped value.
func NewPool(seed uint64, exchange types.Exchange, tokenA, tokenB types.TokenInfo, reserveA, reserveB *big.Int, feeBps uint16) types.PoolData {
	p := types.PoolData{
		Address:  PoolAccount(seed),
		Exchange: exchange,
		TokenA:   tokenA,
		TokenB:   tokenB,
		ReserveA: reserveA,
		ReserveB: reserveB,
		FeeBps:   feeBps,
	}
	p.Price = p.SpotPrice()
	return p
}
