package config

import "fmt"

// Holiday table sources.
const (
	HolidaysEmbedded = "embedded"
	HolidaysFS       = "fs"
	HolidaysGCS      = "gcs"
)

// HolidaysConfig selects where extra holiday tables come from.
// The builtin tables are always loaded.
type HolidaysConfig struct {
	Source string `envconfig:"SOURCE" default:"embedded"`
	Dir    string `envconfig:"DIR"`
	Bucket string `envconfig:"BUCKET"`
	Prefix string `envconfig:"PREFIX" default:"holidays/"`
}

func (c *HolidaysConfig) Validate() error {
	switch c.Source {
	case HolidaysEmbedded:
	case HolidaysFS:
		if c.Dir == "" {
			return fmt.Errorf("FISCAL_HOLIDAYS_DIR is required when FISCAL_HOLIDAYS_SOURCE is 'fs'")
		}
	case HolidaysGCS:
		if c.Bucket == "" {
			return fmt.Errorf("FISCAL_HOLIDAYS_BUCKET is required when FISCAL_HOLIDAYS_SOURCE is 'gcs'")
		}
	default:
		return fmt.Errorf("unknown FISCAL_HOLIDAYS_SOURCE: %s", c.Source)
	}
	return nil
}
