package suggest

import (
	"strings"
	"unicode"
)

// keySuffixes are dropped by NormalizeKey, longest first.
var keySuffixes = []string{"ids", "id"}

// Normalize folds an identifier for comparison.
//
//	Normalize("route_short_name") == "routeshortname"
//	Normalize("RouteShortName")   == "routeshortname"
func Normalize(s string) string {
	return strings.Join(Tokens(s), "")
}

// NormalizeKey is Normalize with a trailing "id" or "ids" removed, unless
// nothing else would be left.
func NormalizeKey(s string) string {
	normalized := Normalize(s)

	for _, suffix := range keySuffixes {
		if strings.HasSuffix(normalized, suffix) && len(normalized) > len(suffix) {
			return strings.TrimSuffix(normalized, suffix)
		}
	}

	return normalized
}

// Tokens splits an identifier into lower case words at separators and
// case changes.
//
//	Tokens("tripHeadsign")   // [trip headsign]
//	Tokens("GTFSRouteID")    // [gtfs route id]
//	Tokens("stop_times.txt") // [stop times.txt]
func Tokens(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()

			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// startsToken reports a lower to upper transition ("tripId") or the last
// upper case rune of an acronym followed by a word ("GTFSRoute").
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
