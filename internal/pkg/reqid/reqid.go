package reqid

import (
	"fmt"
	"time"
)

// Next returns a requisition identifier derived from the simulation date,
// disambiguated with an incrementing _W suffix. taken reports whether an
// identifier is already in use anywhere in the market.
func Next(date time.Time, taken func(string) bool) string {
	stamp := date.Format("20060102150405")
	for i := 1; ; i++ {
		id := fmt.Sprintf("%s_W%04d", stamp, i)
		if taken == nil || !taken(id) {
			return id
		}
	}
}
