// Package gst validates Indian tax registration identifiers.
package gst

import (
	"regexp"
	"strings"
)

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

const checksumAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Normalize upper-cases and strips spaces.
func Normalize(gstin string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(gstin), " ", ""))
}

// Valid reports whether gstin has the 15 character layout and a correct check digit.
func Valid(gstin string) bool {
	if !gstinPattern.MatchString(gstin) {
		return false
	}
	return checkDigit(gstin[:14]) == gstin[14]
}

// StateCode returns the two digit state prefix.
func StateCode(gstin string) string {
	if len(gstin) < 2 {
		return ""
	}
	return gstin[:2]
}

// Check returns a form error for optional GSTIN fields.
func Check(gstin string) string {
	if gstin == "" || Valid(gstin) {
		return ""
	}
	return "Enter a valid 15 character GSTIN."
}

func checkDigit(body string) byte {
	const mod = 36
	sum := 0
	for i := 0; i < len(body); i++ {
		value := strings.IndexByte(checksumAlphabet, body[i])
		factor := 1
		if i%2 == 1 {
			factor = 2
		}
		product := value * factor
		sum += product/mod + product%mod
	}
	return checksumAlphabet[(mod-sum%mod)%mod]
}
