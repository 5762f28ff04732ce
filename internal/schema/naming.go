package schema

import (
	"strings"
	"unicode"
)

// ExternalName derives a record field name from a property name by inserting
// "_" before each run of uppercase letters and lowercasing the result.
// Examples:
//   - "routeShortName" -> "route_short_name"
//   - "id" -> "id"
//   - "ShapeDistTraveled" -> "shape_dist_traveled"
//   - "wheelchairBoardingID" -> "wheelchair_boarding_id"
func ExternalName(name string) string {
	var b strings.Builder

	b.Grow(len(name) + 4)

	wasUpper := false

	for _, r := range name {
		isUpper := unicode.IsUpper(r)

		if isUpper && !wasUpper && b.Len() > 0 {
			b.WriteByte('_')
		}

		b.WriteRune(unicode.ToLower(r))

		wasUpper = isUpper
	}

	return b.String()
}
