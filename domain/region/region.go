// Package region validates region codes. US states and territories are
// checked against a closed set; other countries only by code format.
package region

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// US is the country whose regions form a closed set.
const US = "US"

// codePattern matches the subdivision part of an ISO 3166-2 code.
var codePattern = regexp.MustCompile(`^[A-Z0-9]{1,3}$`)

var codes = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {},
	"FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {},
	"KY": {}, "LA": {}, "ME": {}, "MD": {}, "MA": {}, "MI": {}, "MN": {}, "MS": {},
	"MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {},
	"NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {},
	"WI": {}, "WY": {}, "DC": {}, "PR": {},
}

// InvalidCodesError lists every unrecognized region code in a request.
type InvalidCodesError struct {
	Codes []string
}

func (e *InvalidCodesError) Error() string {
	return fmt.Sprintf("invalid region codes: %s", strings.Join(e.Codes, ", "))
}

// Valid reports whether code is a recognized upper-case region code.
func Valid(code string) bool {
	_, ok := codes[code]
	return ok
}

// All returns every recognized code, sorted.
func All() []string {
	all := make([]string, 0, len(codes))
	for c := range codes {
		all = append(all, c)
	}
	sort.Strings(all)
	return all
}

// ValidFor reports whether code is a region code of country. Outside the
// US any upper-case alphanumeric code of one to three characters passes.
func ValidFor(country, code string) bool {
	if country == US {
		return Valid(code)
	}
	return codePattern.MatchString(code)
}

// Validate checks US codes. See ValidateFor.
func Validate(input []string) ([]string, error) {
	return ValidateFor(US, input)
}

// ValidateFor upper-cases and trims the given codes, drops blanks and
// duplicates, and returns them in input order. If any code is not a region
// of country it returns an *InvalidCodesError naming all of them.
func ValidateFor(country string, input []string) ([]string, error) {
	seen := make(map[string]struct{}, len(input))
	valid := make([]string, 0, len(input))
	var invalid []string
	for _, raw := range input {
		code := strings.ToUpper(strings.TrimSpace(raw))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		if !ValidFor(country, code) {
			invalid = append(invalid, code)
			continue
		}
		valid = append(valid, code)
	}
	if len(invalid) > 0 {
		return nil, &InvalidCodesError{Codes: invalid}
	}
	return valid, nil
}

// Parse splits a comma-separated list of US codes and validates it.
func Parse(csv string) ([]string, error) {
	return ParseFor(US, csv)
}

// ParseFor splits a comma-separated list and validates it for country.
func ParseFor(country, csv string) ([]string, error) {
	return ValidateFor(country, strings.Split(csv, ","))
}
