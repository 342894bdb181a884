// Package randompkg provides functionality for generating random ledger fixtures.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"
)

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Float64 is a shortcut for generating a random float between 0 and 1 using crypto/rand.
func Float64() float64 {
	return float64(Intn(1<<32)) / (1 << 32)
}

// IntBetween generates a random integer in [min, max].
func IntBetween(min, max int64) int64 {
	return min + Intn(int(max-min+1))
}

// FloatBetween generates a random decimal number between min and max rounded down to 2 decimals.
func FloatBetween(min, max float64) float64 {
	numInRange := min + Float64()*(max-min)
	return math.Floor(numInRange*100) / 100
}

func fromSet(set string, n int) string {
	var sb strings.Builder

	k := len(set)

	for i := 0; i < n; i++ {
		_ = sb.WriteByte(set[Intn(k)]) // The returned err is always nil.
	}

	return sb.String()
}

// String generates a random string of length n.
func String(n int) string {
	return fromSet(alphabet, n)
}

// FullName generates a random capitalized first and last name.
func FullName() string {
	first, last := String(6), String(8)
	return strings.ToUpper(first[:1]) + first[1:] + " " + strings.ToUpper(last[:1]) + last[1:]
}

// MobileNumber generates a random ten digit mobile number.
func MobileNumber() string {
	return "9" + fromSet(digits, 9)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}

// BirthDate generates a random date of birth of an adult, truncated to the day.
func BirthDate() time.Time {
	years := int(IntBetween(18, 80))
	days := int(Intn(365))

	return time.Now().UTC().AddDate(-years, 0, -days).Truncate(24 * time.Hour)
}

// MoneyAmountBetween generates a random amount of money between min and max rounded to 2 decimals.
func MoneyAmountBetween(min, max float64) decimal.Decimal {
	amount := decimal.NewFromFloat(FloatBetween(min, max))
	if !amount.IsPositive() {
		return decimal.NewFromFloat(min).Round(2)
	}

	return amount
}
