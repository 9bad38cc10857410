/**
 * @description
 * This package owns the supported-token allow-list and the placeholder USD
 * conversion rates used to derive per-recipient token amounts for a payout.
 *
 * @notes
 * - Rates are placeholders; in production these would come from an oracle or
 *   pricing API.
 */

package tokens

// Supported payout tokens.
const (
	FLOW  = "FLOW"
	USDC  = "USDC"
	FROTH = "FROTH"
)

var usdRates = map[string]float64{
	FLOW:  0.7,
	USDC:  1.0,
	FROTH: 0.1,
}

// IsSupported reports whether the token is in the allow-list.
func IsSupported(token string) bool {
	_, ok := usdRates[token]
	return ok
}

// Supported returns the allow-list in a stable order.
func Supported() []string {
	return []string{FLOW, USDC, FROTH}
}

// ToUSD converts a token amount to USD at the placeholder rate. Unknown tokens
// convert 1:1, matching the reference behavior.
func ToUSD(amount float64, token string) float64 {
	rate, ok := usdRates[token]
	if !ok {
		rate = 1
	}
	return amount * rate
}

// FromUSD converts a USD amount to a token amount at the placeholder rate.
func FromUSD(usd float64, token string) float64 {
	rate, ok := usdRates[token]
	if !ok {
		rate = 1
	}
	if rate == 0 {
		return 0
	}
	return usd / rate
}
