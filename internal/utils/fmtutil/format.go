// Package fmtutil provides formatting utilities for human-readable output.
// Package fmtutil 提供用于人类可读输出的格式化工具。
package fmtutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatCount formats a count with thousand separators.
// FormatCount 格式化计数，添加千位分隔符。
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String()
}

// FormatDuration formats a duration to human readable format. Durations
// under a second keep millisecond precision.
// FormatDuration 将持续时间格式化为可读格式。
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := d.Seconds() - float64(hours*3600+minutes*60)

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%.2fs", seconds))
	return strings.Join(parts, " ")
}

// FormatRate formats a rate value with appropriate unit.
// FormatRate 格式化速率值，使用适当的单位。
func FormatRate(rate float64, unit string) string {
	if rate < 1000 {
		return fmt.Sprintf("%.0f %s", rate, unit)
	}
	if rate < 1000000 {
		return fmt.Sprintf("%.2f K%s", rate/1000, unit)
	}
	return fmt.Sprintf("%.2f M%s", rate/1000000, unit)
}
