package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestValidateNumber(t *testing.T) {
	testCases := []struct {
		name      string
		number    string
		brand     Brand
		last4     string
		expectErr string
	}{
		{name: "Visa", number: "4111111111111111", brand: BrandVisa, last4: "1111"},
		{name: "Visa with spaces", number: "4111 1111 1111 1111", brand: BrandVisa, last4: "1111"},
		{name: "Mastercard 5x", number: "5555555555554444", brand: BrandMastercard, last4: "4444"},
		{name: "Mastercard 2x", number: "2223003122003222", brand: BrandMastercard, last4: "3222"},
		{name: "Amex", number: "378282246310005", brand: BrandAmex, last4: "0005"},
		{name: "Discover", number: "6011111111111117", brand: BrandDiscover, last4: "1117"},
		{name: "All zeros", number: "0000000000000000", expectErr: "Invalid card number: checksum failed"},
		{name: "Bad checksum", number: "4111111111111112", expectErr: "Invalid card number: checksum failed"},
		{name: "Letters", number: "4111abcd11111111", expectErr: "Card number must contain only digits"},
		{name: "Empty", number: "", expectErr: "Card number must contain only digits"},
		{name: "Too short", number: "411111111111", expectErr: "Card number must be 13-19 digits"},
		{name: "Too long", number: "41111111111111111111", expectErr: "Card number must be 13-19 digits"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			brand, last4, err := ValidateNumber(tc.number)
			if tc.expectErr != "" {
				require.Error(t, err)
				assert.Equal(t, tc.expectErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.brand, brand)
			assert.Equal(t, tc.last4, last4)
		})
	}
}

func TestDetectBrand(t *testing.T) {
	testCases := map[string]Brand{
		"4000":   BrandVisa,
		"5100":   BrandMastercard,
		"2221":   BrandMastercard,
		"2720":   BrandMastercard,
		"2721":   BrandUnknown,
		"3400":   BrandAmex,
		"3700":   BrandAmex,
		"6011":   BrandDiscover,
		"6500":   BrandDiscover,
		"622126": BrandDiscover,
		"622925": BrandDiscover,
		"622926": BrandUnknown,
		"644000": BrandDiscover,
		"649000": BrandDiscover,
		"3000":   BrandUnknown,
	}
	for prefix, want := range testCases {
		assert.Equal(t, want, DetectBrand(prefix+"0000000000"), prefix)
	}
}

func TestParseExpiry(t *testing.T) {
	testCases := []struct {
		in          string
		month, year int
		wantErr     bool
	}{
		{in: "12/28", month: 12, year: 2028},
		{in: "1/2028", month: 1, year: 2028},
		{in: "0628", month: 6, year: 2028},
		{in: "062028", month: 6, year: 2028},
		{in: " 07/27 ", month: 7, year: 2027},
		{in: "12-28", wantErr: true},
		{in: "1/2/28", wantErr: true},
		{in: "ab/28", wantErr: true},
		{in: "12/2", wantErr: true},
		{in: "123", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			month, year, err := ParseExpiry(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.month, month)
			assert.Equal(t, tc.year, year)
		})
	}
}

func TestValidateExpiry(t *testing.T) {
	assert.NoError(t, ValidateExpiry(3, 2026, now), "current month is still valid")
	assert.NoError(t, ValidateExpiry(12, 2036, now))

	err := ValidateExpiry(2, 2026, now)
	require.Error(t, err)
	assert.Equal(t, "Card has expired", err.Error())

	month, year, err := ParseExpiry("01/20")
	require.NoError(t, err)
	assert.EqualError(t, ValidateExpiry(month, year, now), "Card has expired")

	assert.EqualError(t, ValidateExpiry(13, 2027, now), "Invalid expiry month (must be 01-12)")
	assert.EqualError(t, ValidateExpiry(0, 2027, now), "Invalid expiry month (must be 01-12)")
	assert.EqualError(t, ValidateExpiry(1, 2037, now), "Invalid expiry year")
}

func TestValidateCVV(t *testing.T) {
	assert.NoError(t, ValidateCVV("123", BrandVisa))
	assert.NoError(t, ValidateCVV("1234", BrandAmex))
	assert.EqualError(t, ValidateCVV("12", BrandVisa), "CVV must be 3 digits")
	assert.EqualError(t, ValidateCVV("1234", BrandMastercard), "CVV must be 3 digits")
	assert.EqualError(t, ValidateCVV("123", BrandAmex), "Amex CVV must be 4 digits")
	assert.EqualError(t, ValidateCVV("12a", BrandVisa), "CVV must contain only digits")
}

func TestValidate_ShortCircuits(t *testing.T) {
	// Bad number wins over bad expiry and CVV.
	_, err := Validate("4111111111111112", "01/20", "1", now)
	assert.EqualError(t, err, "Invalid card number: checksum failed")

	_, err = Validate("4111111111111111", "01/20", "1", now)
	assert.EqualError(t, err, "Card has expired")

	details, err := Validate("378282246310005", "12/29", "1234", now)
	require.NoError(t, err)
	assert.Equal(t, Details{Brand: BrandAmex, Last4: "0005", ExpiryMonth: 12, ExpiryYear: 2029}, details)

	var vErr *ValidationError
	_, err = Validate("4111111111111111", "12/29", "12", now)
	assert.ErrorAs(t, err, &vErr)
}
