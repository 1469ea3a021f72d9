package cli

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var usdPattern = regexp.MustCompile(`^-?\$\d{1,3}(,\d{3})*\.\d{2}$`)

// FormatUSD always produces $ with western thousands grouping, two decimal
// places, and a value that parses back to the input.
func TestProperty_USDFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatUSD produces valid grouped format", prop.ForAll(
		func(amount float64) bool {
			if math.IsNaN(amount) || math.IsInf(amount, 0) {
				return true
			}

			formatted := FormatUSD(amount)
			if !usdPattern.MatchString(formatted) {
				t.Logf("bad format for %f: %s", amount, formatted)
				return false
			}

			// Value survives the round trip to cent precision.
			clean := strings.NewReplacer("$", "", ",", "").Replace(formatted)
			parsed, err := strconv.ParseFloat(clean, 64)
			if err != nil {
				return false
			}
			return math.Abs(parsed-amount) <= 0.005+math.Abs(amount)*1e-12
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatPnL signs gains explicitly", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatPnL(amount)
			if amount > 0 {
				return strings.HasPrefix(formatted, "+$")
			}
			if amount < 0 {
				return strings.HasPrefix(formatted, "-$")
			}
			return strings.HasPrefix(formatted, "$")
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}

func TestFormatUSDExamples(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{1000000, "$1,000,000.00"},
		{-99.99, "-$99.99"},
		{999.996, "$1,000.00"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.amount); got != tt.want {
			t.Errorf("FormatUSD(%v) = %s, want %s", tt.amount, got, tt.want)
		}
	}
}

func TestFormatShares(t *testing.T) {
	if got := FormatShares(500); got != "500" {
		t.Errorf("FormatShares(500) = %s, want 500", got)
	}
	if got := FormatShares(123.456); got != "123.46" {
		t.Errorf("FormatShares(123.456) = %s, want 123.46", got)
	}
}
