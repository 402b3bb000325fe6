package timezone

import (
	"sync"
	"time"
)

// Zone is where appointments are booked; dates on the wire are local to it.
const Zone = "America/Sao_Paulo"

const ISODate = "2006-01-02"

var (
	once sync.Once
	loc  *time.Location
)

// Location falls back to a fixed UTC-3 when the host has no tzdata.
func Location() *time.Location {
	once.Do(func() {
		l, err := time.LoadLocation(Zone)
		if err != nil {
			l = time.FixedZone("BRT", -3*60*60)
		}
		loc = l
	})
	return loc
}

func Now() time.Time {
	return time.Now().In(Location())
}

// Today is the ISO date of t in the booking zone.
func Today(t time.Time) string {
	return t.In(Location()).Format(ISODate)
}

// ParseISODate reads a YYYY-MM-DD date as midnight in the booking zone.
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(ISODate, s, Location())
}
