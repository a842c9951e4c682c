package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxPercentage = 100.0

// parseFeePercentage parses a fee percentage string with up to 2 decimal places into its
// basis-point on-chain representation, percent times 100 (e.g. "12.5" -> 1250).
func parseFeePercentage(s string) (uint16, error) {
	v, err := parsePercentage(s, 2)
	if err != nil {
		return 0, err
	}
	return uint16(math.Round(v * 100)), nil
}

// parseBurnRatePercentage parses a community burn rate percentage string with up to 7
// decimal places into its 10_000_000-scaled on-chain representation
// (e.g. "12.3456789" -> 123456789).
func parseBurnRatePercentage(s string) (uint32, error) {
	v, err := parsePercentage(s, 7)
	if err != nil {
		return 0, err
	}
	return uint32(math.Round(v * 10_000_000)), nil
}

// parsePercentage enforces the shared rules: at most maxDecimals digits after the decimal
// point, and a value in [0, 100].
func parsePercentage(s string, maxDecimals int) (float64, error) {
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		if len(s)-dot-1 > maxDecimals {
			return 0, fmt.Errorf("%q has more than %d decimal places", s, maxDecimals)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid number: %w", s, err)
	}
	if v < 0 || v > maxPercentage {
		return 0, fmt.Errorf("%q must be between 0 and %g", s, maxPercentage)
	}
	return v, nil
}
