package utils

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	addressHexLen = 40
	txHashHexLen  = 64
)

var gweiPerWei = new(big.Float).SetInt64(1_000_000_000)

// NormalizeAddress validates a 20-byte hex chain address and returns it
// 0x-prefixed and lowercased. Addresses are compared as strings throughout
// the pipeline, so every boundary normalizes before use.
func NormalizeAddress(addr string) (string, error) {
	hexPart := strings.TrimPrefix(addr, "0x")
	if len(hexPart) != addressHexLen {
		return "", fmt.Errorf("address %q: expected %d hex characters, got %d", addr, addressHexLen, len(hexPart))
	}
	if !isHex(hexPart) {
		return "", fmt.Errorf("address %q: not a hex string", addr)
	}
	return "0x" + strings.ToLower(hexPart), nil
}

// NormalizeTxHash validates a 32-byte hex transaction hash and returns it
// 0x-prefixed and lowercased.
func NormalizeTxHash(hash string) (string, error) {
	hexPart := strings.TrimPrefix(hash, "0x")
	if len(hexPart) != txHashHexLen {
		return "", fmt.Errorf("tx hash %q: expected %d hex characters, got %d", hash, txHashHexLen, len(hexPart))
	}
	if !isHex(hexPart) {
		return "", fmt.Errorf("tx hash %q: not a hex string", hash)
	}
	return "0x" + strings.ToLower(hexPart), nil
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// WeiToGwei converts a wei-denominated value to gwei as a float64.
// A nil value converts to 0.
func WeiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), gweiPerWei).Float64()
	return out
}

// Uint64ToGwei converts a raw uint64 base-unit quantity (e.g. gas used) to
// gwei scale, matching the display convention of the rest of the pipeline.
func Uint64ToGwei(v uint64) float64 {
	return WeiToGwei(new(big.Int).SetUint64(v))
}
