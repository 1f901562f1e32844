package blockchain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// lamportDecimals is the number of decimal places in one SOL.
const lamportDecimals = 9

// ErrInvalidAmount is returned for amounts that are not a positive SOL decimal.
var ErrInvalidAmount = errors.New("invalid amount")

// LamportsToSOL converts lamports to SOL for display.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / float64(solana.LAMPORTS_PER_SOL)
}

// FormatSOL renders lamports as an exact SOL decimal without trailing zeros.
func FormatSOL(lamports uint64) string {
	whole := lamports / solana.LAMPORTS_PER_SOL
	frac := lamports % solana.LAMPORTS_PER_SOL
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return fmt.Sprintf("%d.%s", whole, fracStr)
}

// ParseSOL converts a user-entered SOL amount to lamports without going
// through floating point.
func ParseSOL(amount string) (uint64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	wholePart, fracPart, hasDot := strings.Cut(amount, ".")
	if hasDot && fracPart == "" && wholePart == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if !isDigits(wholePart) || (hasDot && !isDigits(fracPart)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if len(fracPart) > lamportDecimals {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, amount, lamportDecimals)
	}

	var whole uint64
	if wholePart != "" {
		var err error
		whole, err = strconv.ParseUint(wholePart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
		}
	}
	if whole > math.MaxUint64/solana.LAMPORTS_PER_SOL {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, amount)
	}

	var frac uint64
	if fracPart != "" {
		padded := fracPart + strings.Repeat("0", lamportDecimals-len(fracPart))
		var err error
		frac, err = strconv.ParseUint(padded, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
		}
	}

	lamports := whole*solana.LAMPORTS_PER_SOL + frac
	if lamports < frac {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, amount)
	}
	if lamports == 0 {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}

	return lamports, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParsePublicKey parses a base58 account address.
func ParsePublicKey(address string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid address %q: %w", address, err)
	}
	return key, nil
}
