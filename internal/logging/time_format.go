package logging

import "time"

const consoleTimestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(ts time.Time, layout string) string {
	if ts.IsZero() {
		return ""
	}
	if layout == "" {
		layout = consoleTimestampLayout
	}
	return ts.In(time.Local).Format(layout)
}
