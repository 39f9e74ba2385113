// Package card holds the side-effect-free card checks run before any gateway call.
package card

import (
	"strconv"
	"strings"
	"time"
)

type Brand string

const (
	BrandVisa       Brand = "Visa"
	BrandMastercard Brand = "Mastercard"
	BrandAmex       Brand = "Amex"
	BrandDiscover   Brand = "Discover"
	BrandUnknown    Brand = "Unknown"
)

// maxExpiryYears bounds how far in the future an expiry may lie.
const maxExpiryYears = 10

// ValidationError carries a human-readable reason for a rejected card.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// Details is what survives validation: enough to persist a masked card.
type Details struct {
	Brand       Brand
	Last4       string
	ExpiryMonth int
	ExpiryYear  int
}

// Validate runs every check in order and stops at the first failure.
func Validate(number, expiry, cvv string, now time.Time) (Details, error) {
	brand, last4, err := ValidateNumber(number)
	if err != nil {
		return Details{}, err
	}
	month, year, err := ParseExpiry(expiry)
	if err != nil {
		return Details{}, err
	}
	if err := ValidateExpiry(month, year, now); err != nil {
		return Details{}, err
	}
	if err := ValidateCVV(cvv, brand); err != nil {
		return Details{}, err
	}
	return Details{Brand: brand, Last4: last4, ExpiryMonth: month, ExpiryYear: year}, nil
}

// Normalize strips the spaces and dashes customers type between digit groups.
func Normalize(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(number)
}

// ValidateNumber checks format and Luhn checksum, then detects the brand.
func ValidateNumber(number string) (Brand, string, error) {
	number = Normalize(number)
	if number == "" || !isDigits(number) {
		return "", "", invalid("Card number must contain only digits")
	}
	if len(number) < 13 || len(number) > 19 {
		return "", "", invalid("Card number must be 13-19 digits")
	}
	if !LuhnValid(number) {
		return "", "", invalid("Invalid card number: checksum failed")
	}
	return DetectBrand(number), number[len(number)-4:], nil
}

// LuhnValid reports whether digits passes the Luhn checksum. An all-zero
// number has a zero sum but is never an issued account, so it fails.
func LuhnValid(digits string) bool {
	sum, nonZero := 0, false
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if d != 0 {
			nonZero = true
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return nonZero && sum%10 == 0
}

// DetectBrand classifies a card number by its issuer prefix.
func DetectBrand(number string) Brand {
	number = Normalize(number)
	switch {
	case strings.HasPrefix(number, "4"):
		return BrandVisa
	case hasAnyPrefix(number, "51", "52", "53", "54", "55"), prefixInRange(number, 4, 2221, 2720):
		return BrandMastercard
	case hasAnyPrefix(number, "34", "37"):
		return BrandAmex
	case hasAnyPrefix(number, "6011", "65"), prefixInRange(number, 6, 622126, 622925), prefixInRange(number, 3, 644, 649):
		return BrandDiscover
	default:
		return BrandUnknown
	}
}

// ParseExpiry accepts MM/YY, MM/YYYY, MMYY and MMYYYY and returns a four-digit year.
func ParseExpiry(expiry string) (int, int, error) {
	expiry = strings.TrimSpace(expiry)

	var monthPart, yearPart string
	if strings.Contains(expiry, "/") {
		parts := strings.Split(expiry, "/")
		if len(parts) != 2 {
			return 0, 0, invalid("Invalid expiry format")
		}
		monthPart, yearPart = parts[0], parts[1]
	} else {
		if len(expiry) != 4 && len(expiry) != 6 {
			return 0, 0, invalid("Invalid expiry format. Use MM/YY or MM/YYYY")
		}
		monthPart, yearPart = expiry[:2], expiry[2:]
	}

	if len(monthPart) < 1 || len(monthPart) > 2 || (len(yearPart) != 2 && len(yearPart) != 4) ||
		!isDigits(monthPart) || !isDigits(yearPart) {
		return 0, 0, invalid("Invalid expiry format")
	}

	month, _ := strconv.Atoi(monthPart)
	year, _ := strconv.Atoi(yearPart)
	if year < 100 {
		year += 2000
	}
	return month, year, nil
}

// ValidateExpiry rejects bad months, expired cards and implausibly distant expiries.
func ValidateExpiry(month, year int, now time.Time) error {
	if month < 1 || month > 12 {
		return invalid("Invalid expiry month (must be 01-12)")
	}
	currentYear, currentMonth := now.Year(), int(now.Month())
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return invalid("Card has expired")
	}
	if year > currentYear+maxExpiryYears {
		return invalid("Invalid expiry year")
	}
	return nil
}

// ValidateCVV requires four digits for Amex and three for everything else.
func ValidateCVV(cvv string, brand Brand) error {
	cvv = strings.TrimSpace(cvv)
	if cvv == "" || !isDigits(cvv) {
		return invalid("CVV must contain only digits")
	}
	if brand == BrandAmex {
		if len(cvv) != 4 {
			return invalid("Amex CVV must be 4 digits")
		}
		return nil
	}
	if len(cvv) != 3 {
		return invalid("CVV must be 3 digits")
	}
	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func prefixInRange(s string, n, low, high int) bool {
	if len(s) < n {
		return false
	}
	v, err := strconv.Atoi(s[:n])
	if err != nil {
		return false
	}
	return v >= low && v <= high
}
