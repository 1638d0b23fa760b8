// Package verify provides checksum and plausibility validators that gate
// regex matches. A rule references a validator by name; after the expression
// matches, the validator decides whether the matched substring is real
// (e.g. a credit card number that passes Luhn) or merely shaped like one.
package verify

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Func reports whether a matched substring passes domain validation.
// Implementations must be safe for concurrent use.
type Func func(value string) bool

var mod97 = big.NewInt(97)

// IBANMod97 verifies an IBAN with the standard mod-97 check: the first four
// characters move to the end, letters map to 10..35, and the resulting
// integer must leave remainder 1 modulo 97. Spaces are ignored and case is
// normalized; any other non-alphanumeric character fails.
func IBANMod97(value string) bool {
	iban := strings.ToUpper(strings.ReplaceAll(value, " ", ""))
	if iban == "" {
		return false
	}
	rearranged := iban
	if len(iban) > 4 {
		rearranged = iban[4:] + iban[:4]
	}

	var numeric strings.Builder
	numeric.Grow(len(rearranged) * 2)
	for _, c := range rearranged {
		switch {
		case c >= '0' && c <= '9':
			numeric.WriteRune(c)
		case c >= 'A' && c <= 'Z':
			numeric.WriteString(strconv.Itoa(int(c-'A') + 10))
		default:
			return false
		}
	}

	n, ok := new(big.Int).SetString(numeric.String(), 10)
	if !ok {
		return false
	}
	return new(big.Int).Mod(n, mod97).Int64() == 1
}

// Luhn verifies a number with the Luhn mod-10 checksum used by credit cards
// and several national id schemes. Non-digit characters (separators, spaces)
// are stripped first; a value with no digits at all fails.
func Luhn(value string) bool {
	var digits []int
	for _, c := range value {
		if c >= '0' && c <= '9' {
			digits = append(digits, int(c-'0'))
		}
	}
	if len(digits) == 0 {
		return false
	}

	checksum := 0
	for i := 0; i < len(digits); i++ {
		d := digits[len(digits)-1-i]
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		checksum += d
	}
	return checksum%10 == 0
}

var dmsRe = regexp.MustCompile(`(?i)^(\d{1,3})°\s*(\d{1,2})′\s*(\d{1,2}(?:\.\d+)?)″\s*([NSEW])`)

// DMSCoordinate verifies a degrees-minutes-seconds coordinate such as
// "37°46′29.7″N": minutes below 60, seconds below 60, and degrees within
// range for the hemisphere (90 for N/S, 180 for E/W).
func DMSCoordinate(value string) bool {
	m := dmsRe.FindStringSubmatch(value)
	if m == nil {
		return false
	}

	degrees, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return false
	}
	seconds, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return false
	}

	if minutes > 59 || seconds >= 60 {
		return false
	}
	switch strings.ToUpper(m[4]) {
	case "N", "S":
		return degrees <= 90
	case "E", "W":
		return degrees <= 180
	}
	return false
}

const entropyThreshold = 4.0

// HighEntropyToken verifies that a value looks like random secret material:
// at least 20 characters, no whitespace, base64url/hex-ish character set
// (dots allowed so JWT segments pass), and Shannon entropy of at least 4.0
// bits per character. Repetitive strings that merely fit a token shape fail
// the entropy bar.
func HighEntropyToken(value string) bool {
	if len(value) < 20 {
		return false
	}
	if strings.ContainsAny(value, " \n\r\t") {
		return false
	}

	var counts [256]int
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '_', c == '-', c == '+', c == '/', c == '=', c == '.':
		default:
			return false
		}
		counts[c]++
	}

	length := float64(len(value))
	entropy := 0.0
	for _, count := range counts {
		if count == 0 {
			continue
		}
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy >= entropyThreshold
}
