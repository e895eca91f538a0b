// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"time"
)

// dateLayout is the publication-date grammar PubMed expects.
const dateLayout = "2006/01/02"

// subtractYears subtracts n years from a date in dateLayout form,
// preserving month and day. Feb 29 maps to Feb 28 when the target year
// is not a leap year; time.AddDate would normalize it to Mar 1 instead,
// which is the wrong side of the window boundary.
func subtractYears(dateStr string, n int) (string, error) {
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", dateStr, err)
	}

	year := date.Year() - n
	day := date.Day()
	if date.Month() == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}

	return time.Date(year, date.Month(), day, 0, 0, 0, 0, time.UTC).Format(dateLayout), nil
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// dateClause returns the query suffix restricting publication dates to
// [restriction − years, restriction], in PubMed's [dp] grammar.
func dateClause(restriction string, years int) (string, error) {
	lower, err := subtractYears(restriction, years)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(" AND %s:%s[dp]", lower, restriction), nil
}
