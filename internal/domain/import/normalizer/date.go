package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalDateLayout is the time layout of canonical dates (DD/MM/YYYY).
const CanonicalDateLayout = "02/01/2006"

// ErrInvalidDate is returned when no supported date pattern matches.
var ErrInvalidDate = errors.New("invalid date")

// Location is the zone canonical dates are interpreted in.
var Location = time.Local

var (
	canonicalDateRe = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	isoDateRe       = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:$|[T ])`)
	looseDateRe     = regexp.MustCompile(`(\d{1,2})[^\d](\d{1,2})[^\d](\d{4})`)
	shapeDateRe     = regexp.MustCompile(`^(?:\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})$`)
)

// NormalizeDate converts DD/MM/YYYY, YYYY-MM-DD and loose D-M-YYYY style
// strings into the canonical DD/MM/YYYY form. The result is always a real
// calendar date.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidDate
	}

	var day, month, year string
	if m := canonicalDateRe.FindStringSubmatch(s); m != nil {
		day, month, year = m[1], m[2], m[3]
	} else if m := isoDateRe.FindStringSubmatch(s); m != nil {
		day, month, year = m[3], m[2], m[1]
	} else if m := looseDateRe.FindStringSubmatch(s); m != nil {
		day, month, year = m[1], m[2], m[3]
	} else {
		return "", ErrInvalidDate
	}

	d, _ := strconv.Atoi(day)
	mo, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	if !validCalendarDate(y, mo, d) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return fmt.Sprintf("%02d/%02d/%04d", d, mo, y), nil
}

// LooksLikeDate reports whether a cell is an ISO or canonical date. Used to
// tell date-first rows from description-first rows.
func LooksLikeDate(cell string) bool {
	return shapeDateRe.MatchString(strings.TrimSpace(cell))
}

// ParseCanonical returns the time for a canonical date.
func ParseCanonical(ddmmyyyy string) (time.Time, bool) {
	parts := strings.Split(ddmmyyyy, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	d, errD := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	y, errY := strconv.Atoi(parts[2])
	if errD != nil || errM != nil || errY != nil {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, Location), true
}

// Timestamp returns Unix milliseconds for a canonical date, or 0 when the
// input is malformed. Callers must treat 0 as unsortable, not as a date.
func Timestamp(ddmmyyyy string) int64 {
	t, ok := ParseCanonical(ddmmyyyy)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// FormatDate renders t as a canonical date.
func FormatDate(t time.Time) string {
	return t.In(Location).Format(CanonicalDateLayout)
}

// Year returns the year component of a canonical date, or "" when malformed.
func Year(ddmmyyyy string) string {
	parts := strings.Split(ddmmyyyy, "/")
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}

// MonthKey returns the MM/YYYY key of a canonical date.
func MonthKey(ddmmyyyy string) string {
	parts := strings.Split(ddmmyyyy, "/")
	if len(parts) != 3 {
		return ""
	}
	return parts[1] + "/" + parts[2]
}

func validCalendarDate(year, month, day int) bool {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}
