package util

import "time"

// Clock stamps settlement records. Tests swap in FixedClock.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant, advancing by Step after each call when Step > 0.
type FixedClock struct {
	T    time.Time
	Step time.Duration
}

func (c *FixedClock) Now() time.Time {
	now := c.T
	c.T = c.T.Add(c.Step)
	return now
}
