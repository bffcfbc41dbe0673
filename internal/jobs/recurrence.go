package jobs

import "time"

// Birthday emails go out at 09:00 local time.
const sendHour = 9

// NextOccurrence returns the next instant at 09:00 local time in loc on the
// given anniversary month/day that is strictly after from.
//
// A Feb 29 anchor resolves to Feb 28 in non-leap years. The anchor itself is
// never changed, so a later leap year gets Feb 29 again.
func NextOccurrence(month time.Month, day int, loc *time.Location, from time.Time) time.Time {
	year := from.In(loc).Year()
	at := occurrenceIn(year, month, day, loc)
	if !at.After(from) {
		at = occurrenceIn(year+1, month, day, loc)
	}
	return at
}

func occurrenceIn(year int, month time.Month, day int, loc *time.Location) time.Time {
	// time.Date would normalize Feb 29 to Mar 1 in non-leap years.
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, sendHour, 0, 0, 0, loc)
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}
