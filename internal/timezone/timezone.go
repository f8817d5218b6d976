// Package timezone resolves salon IANA zones.
package timezone

import "time"

// DefaultTimezone applies to salons with an empty or unknown zone.
const DefaultTimezone = "Asia/Tokyo"

// Location loads tz, falling back to DefaultTimezone and then UTC.
func Location(tz string) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}
