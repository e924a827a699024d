package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts tried, in order, for slash-separated dates
var slashLayouts = []string{"1/2/2006", "2/1/2006", "2006/1/2", "1/2/06"}

// Layouts tried for dash-separated dates and timestamps
var dashLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-1-2",
}

// ParseDate interprets an extract date by its separator: dots are
// day.month.year, slashes try month/day/year then day/month/year then
// year/month/day, dashes are ISO, and eight bare digits are SAP YYYYMMDD.
func ParseDate(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}
	switch {
	case strings.Contains(s, "."):
		// Drop a trailing time part: "16.02.2009 00:00:00"
		if i := strings.IndexByte(s, ' '); i > 0 {
			s = s[:i]
		}
		return parseDotted(s)
	case strings.Contains(s, "/"):
		if i := strings.IndexByte(s, ' '); i > 0 {
			s = s[:i]
		}
		for _, layout := range slashLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	case strings.Contains(s, "-"):
		for _, layout := range dashLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	case len(s) == 8:
		if t, err := time.Parse("20060102", s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDotted(s string) (time.Time, bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || len(parts[2]) != 4 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31.02 into March; reject anything that moved
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

func reformatDate(value, layout string) (string, error) {
	t, ok := ParseDate(value)
	if !ok {
		if strings.TrimSpace(value) == "" {
			return value, nil
		}
		return value, fmt.Errorf("%w: date %q", ErrUnparsable, value)
	}
	return t.Format(layout), nil
}
