package combatlog

import (
	"fmt"
	"time"
)

// EpochYear is used when no year is supplied for a timestamp.
const EpochYear = 1970

const timestampLayout = "2006 1/2 15:04:05.000"

// ParseTimestamp turns a log-local "M/D HH:MM:SS.mmm" stamp into an
// absolute time. The log carries no year, so the caller supplies one
// (zero means EpochYear). A nil loc means time.Local.
// ParseTimestamp 将 "M/D HH:MM:SS.mmm" 时间戳转换为绝对时间。日志不含年份，由调用方提供。
func ParseTimestamp(ts string, year int, loc *time.Location) (time.Time, error) {
	if year <= 0 {
		year = EpochYear
	}
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(timestampLayout, fmt.Sprintf("%04d %s", year, ts), loc)
}
