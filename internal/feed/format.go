package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// epochThreshold separates plausible epoch timestamps from small numerics
// such as a bare year. Values above it are treated as milliseconds since the
// Unix epoch.
const epochThreshold = 1_000_000_000

// FormatSalary renders a salary range for display. The engine never enforces
// min <= max; it only displays what the backend sent.
func FormatSalary(min, max int64) string {
	switch {
	case min == 0 && max == 0:
		return "Not specified"
	case min != 0 && max != 0:
		return fmt.Sprintf("$%s - $%s", groupDigits(min), groupDigits(max))
	case min != 0:
		return fmt.Sprintf("$%s+", groupDigits(min))
	default:
		return fmt.Sprintf("Up to $%s", groupDigits(max))
	}
}

// FormatDate renders an epoch-millisecond timestamp as "Jan 2, 2006".
func FormatDate(millis int64) string {
	return time.UnixMilli(millis).UTC().Format("Jan 2, 2006")
}

// FormatMonthYear renders an experience start/end date as "Jan 2006". The
// backend is ambiguous about the representation, so this is a best-effort
// normalization policy, not validation:
//
//   - numeric values above epochThreshold are epoch-millisecond timestamps
//   - strings containing "-" are parsed as "YYYY-MM"
//   - anything else is returned verbatim
func FormatMonthYear(date DateValue) string {
	value := string(date)
	if value == "" {
		return ""
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > epochThreshold {
		return time.UnixMilli(n).UTC().Format("Jan 2006")
	}
	if strings.Contains(value, "-") {
		parts := strings.SplitN(value, "-", 3)
		year, yerr := strconv.Atoi(parts[0])
		month, merr := strconv.Atoi(parts[1])
		if yerr == nil && merr == nil && month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
		}
	}
	return value
}

// groupDigits inserts thousands separators into a non-negative integer.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
