package a

import "time"

func now() {
	_ = time.Now() // want `time.Now\(\) should be followed by .UTC\(\)`
	_ = time.Now().UTC()
	_ = time.Now().UTC().Format(time.RFC3339)
}

func dates(loc *time.Location) {
	_ = time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	_ = time.Date(2025, time.November, 1, 0, 0, 0, 0, time.Local) // want `time.Date\(\) should use time.UTC as its location`
	_ = time.Date(2025, time.November, 1, 0, 0, 0, 0, loc)        // want `time.Date\(\) should use time.UTC as its location`
}

func suppressed() {
	//nolint
	_ = time.Now()
	_ = time.Now() //nolint:utcdate
	_ = time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local) //nolint:utcdate
}

func otherLinter() {
	_ = time.Now() //nolint:errcheck // want `time.Now\(\) should be followed by .UTC\(\)`
}
