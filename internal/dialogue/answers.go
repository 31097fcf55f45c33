package dialogue

import (
	"errors"
	"strconv"
	"strings"

	"github.com/aretw0/aidbuddy/pkg/domain"
)

// parseYesNo checks "yes" before "no", so "not sure" reads as no.
func parseYesNo(t turn) (bool, bool) {
	if strings.Contains(t.low, "yes") {
		return true, true
	}
	if strings.Contains(t.low, "no") {
		return false, true
	}
	return false, false
}

type householdResult int

const (
	householdOK householdResult = iota
	householdMissing
	householdOutOfRange
)

// parseHousehold keeps only the digits of the message, so "3 people" and
// "family of 4" both parse.
func parseHousehold(t turn) (int, householdResult) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, t.text)
	if digits == "" {
		return 0, householdMissing
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, householdOutOfRange
		}
		return 0, householdMissing
	}
	if n < domain.MinHouseholdSize || n > domain.MaxHouseholdSize {
		return n, householdOutOfRange
	}
	return n, householdOK
}
