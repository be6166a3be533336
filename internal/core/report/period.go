package report

import (
	"fmt"
	"time"
)

// PeriodRange resolves a named period to inclusive YYYY-MM-DD bounds
// relative to now. Weeks start on Monday.
func PeriodRange(period string, now time.Time) (string, string, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var start, end time.Time

	switch period {
	case "today":
		start, end = today, today

	case "yesterday":
		start = today.AddDate(0, 0, -1)
		end = start

	case "this_week":
		start = today.AddDate(0, 0, -isoWeekday(today)+1)
		end = today

	case "last_week":
		end = today.AddDate(0, 0, -isoWeekday(today))
		start = end.AddDate(0, 0, -6)

	case "this_month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = today

	case "last_month":
		start = time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)

	case "last_30_days":
		start = today.AddDate(0, 0, -30)
		end = today

	case "last_90_days":
		start = today.AddDate(0, 0, -90)
		end = today

	default:
		return "", "", fmt.Errorf("unknown report period: %s", period)
	}

	return start.Format(dateLayout), end.Format(dateLayout), nil
}

// isoWeekday is 1 for Monday through 7 for Sunday
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
