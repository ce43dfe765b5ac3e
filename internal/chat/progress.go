package chat

import (
	"math/rand/v2"
	"time"
)

const (
	// ProgressInterval is how often the simulated upload progress advances.
	ProgressInterval = 300 * time.Millisecond
	// ProgressStepMax is the largest single simulated step, in percent.
	ProgressStepMax = 15.0
	// ProgressCap is the ceiling the simulation holds at until the server replies.
	ProgressCap = 90.0
)

// Progress is a cosmetic upload progress indicator. It has no relation to
// bytes transferred; it only promises to stay below 100 until Finish.
type Progress struct {
	percent float64
	done    bool
}

// Advance moves the indicator forward by step, holding at ProgressCap.
// Negative steps are ignored. It is a no-op once finished.
func (p *Progress) Advance(step float64) {
	if p.done || step <= 0 {
		return
	}
	p.percent += step
	if p.percent > ProgressCap {
		p.percent = ProgressCap
	}
}

// Tick advances by a random step in [0, ProgressStepMax).
func (p *Progress) Tick() {
	p.Advance(rand.Float64() * ProgressStepMax)
}

// Finish marks the server response as received.
func (p *Progress) Finish() {
	p.done = true
	p.percent = 100
}

// Percent returns the current value in [0, 100].
func (p Progress) Percent() float64 {
	return p.percent
}

// Fraction returns the current value in [0, 1].
func (p Progress) Fraction() float64 {
	return p.percent / 100
}
