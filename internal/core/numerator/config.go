// Package numerator defines sequential number generation (batch numbers).
package numerator

import (
	"fmt"
	"time"
)

// ResetPeriod controls when a sequence restarts from 1.
type ResetPeriod string

const (
	ResetMonthly ResetPeriod = "month"
	ResetYearly  ResetPeriod = "year"
	ResetNever   ResetPeriod = "never"
)

// Config describes one numbered sequence.
type Config struct {
	// Sequence names the counter (e.g. "production")
	Sequence string

	// PeriodLayout is the time layout of the number's period prefix (e.g. "200601").
	// Empty means no period prefix.
	PeriodLayout string

	// PadWidth is the minimum width of the counter part
	PadWidth int

	ResetPeriod ResetPeriod
}

// BatchNumberConfig yields numbers like 202601-0001, restarting every month.
func BatchNumberConfig() Config {
	return Config{
		Sequence:     "production",
		PeriodLayout: "200601",
		PadWidth:     4,
		ResetPeriod:  ResetMonthly,
	}
}

// Key returns the counter key for the given period.
func (c Config) Key(period time.Time) string {
	switch c.ResetPeriod {
	case ResetMonthly:
		return fmt.Sprintf("%s:%s", c.Sequence, period.Format("200601"))
	case ResetYearly:
		return fmt.Sprintf("%s:%s", c.Sequence, period.Format("2006"))
	default:
		return c.Sequence
	}
}

// Format renders the n-th number of the period.
func (c Config) Format(period time.Time, n int64) string {
	width := c.PadWidth
	if width <= 0 {
		width = 4
	}
	if c.PeriodLayout == "" {
		return fmt.Sprintf("%0*d", width, n)
	}
	return fmt.Sprintf("%s-%0*d", period.Format(c.PeriodLayout), width, n)
}
