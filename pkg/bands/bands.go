// Package bands holds the ordered registries of income and asset ranges the
// assistant asks for instead of exact amounts.
package bands

import "strings"

// Band is a coarse categorical range with its internal key and display label.
type Band struct {
	Key   string
	Label string
}

// Income bands, lowest income first.
var Income = []Band{
	{"under_20k", "Under $20,000"},
	{"20_40k", "$20,000–$40,000"},
	{"40_60k", "$40,000–$60,000"},
	{"60_80k", "$60,000–$80,000"},
	{"80_100k", "$80,000–$100,000"},
	{"100_150k", "$100,000–$150,000"},
	{"150_200k", "$150,000–$200,000"},
	{"over_200k", "Over $200,000"},
}

// Assets bands, lowest balance first.
var Assets = []Band{
	{"under_1k", "Under $1,000"},
	{"1_5k", "$1,000–$5,000"},
	{"5_20k", "$5,000–$20,000"},
	{"20_50k", "$20,000–$50,000"},
	{"50_100k", "$50,000–$100,000"},
	{"over_100k", "Over $100,000"},
}

// LabelFor returns the label of key, or key itself when it is unknown.
func LabelFor(bands []Band, key string) string {
	for _, b := range bands {
		if b.Key == key {
			return b.Label
		}
	}
	return key
}

// KeyFor returns the key whose label is exactly label, or label itself when
// no band carries it.
func KeyFor(bands []Band, label string) string {
	for _, b := range bands {
		if b.Label == label {
			return b.Key
		}
	}
	return label
}

// Valid reports whether key belongs to bands.
func Valid(bands []Band, key string) bool {
	for _, b := range bands {
		if b.Key == key {
			return true
		}
	}
	return false
}

// Keys returns the band keys in registry order.
func Keys(bands []Band) []string {
	keys := make([]string, len(bands))
	for i, b := range bands {
		keys[i] = b.Key
	}
	return keys
}

// Match scans text case-insensitively for a literal band key. The first key
// in registry order wins, so "under_20k or 20_40k" resolves to under_20k.
func Match(bands []Band, text string) (string, bool) {
	low := strings.ToLower(text)
	for _, b := range bands {
		if strings.Contains(low, b.Key) {
			return b.Key, true
		}
	}
	return "", false
}

// Menu renders one "- key: label" line per band.
func Menu(bands []Band) string {
	lines := make([]string, len(bands))
	for i, b := range bands {
		lines[i] = "- " + b.Key + ": " + b.Label
	}
	return strings.Join(lines, "\n")
}
