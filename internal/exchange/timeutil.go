package exchange

import (
	"fmt"
	"time"
)

var iso8601Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000-0700",
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
}

func parse8601(iso string) (int64, error) {
	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("invalid ISO-8601 time %q", iso)
}

func msec() int64 {
	return time.Now().UnixMilli()
}

func iso8601(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
