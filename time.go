package gekko

import "time"

// Time is the frame clock. Elapsed only advances through Tick so tests can
// drive it deterministically.
type Time struct {
	Now     time.Time
	Dt      time.Duration
	Elapsed time.Duration
	Ticks   uint64
}

func newTime() *Time {
	return &Time{Now: time.Now()}
}

func (t *Time) advance(dt time.Duration) {
	t.Dt = dt
	t.Elapsed += dt
	t.Now = t.Now.Add(dt)
	t.Ticks++
}

// DtSeconds is the last frame delta in seconds.
func (t *Time) DtSeconds() float32 {
	return float32(t.Dt.Seconds())
}

func (t *Time) ElapsedSeconds() float32 {
	return float32(t.Elapsed.Seconds())
}
