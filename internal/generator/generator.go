// Package generator simulates human tap timing.
package generator

import (
	"math"
	"math/rand"
)

// minIntervalMs keeps simulated taps strictly increasing.
const minIntervalMs = 1

// Generator produces humanized tap timestamps.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator with a fixed seed so runs are reproducible.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Taps returns count timestamps in milliseconds starting at start, spaced
// for bpm. Each interval is perturbed by up to jitter (a fraction of the
// nominal interval) in either direction.
func (g *Generator) Taps(bpm float64, count int, jitter float64, start int64) []int64 {
	return g.Ramp(bpm, bpm, count, jitter, start)
}

// Ramp is like Taps but moves the tempo linearly from fromBPM to toBPM
// across the taps.
func (g *Generator) Ramp(fromBPM, toBPM float64, count int, jitter float64, start int64) []int64 {
	if count <= 0 || fromBPM <= 0 || toBPM <= 0 {
		return nil
	}
	taps := make([]int64, 0, count)
	ts := start
	taps = append(taps, ts)
	steps := count - 1
	for i := 0; i < steps; i++ {
		bpm := fromBPM
		if steps > 1 {
			bpm += (toBPM - fromBPM) * float64(i) / float64(steps-1)
		}
		ts += g.interval(bpm, jitter)
		taps = append(taps, ts)
	}
	return taps
}

func (g *Generator) interval(bpm, jitter float64) int64 {
	nominal := 60000 / bpm
	if jitter > 0 {
		nominal += nominal * jitter * (2*g.rnd.Float64() - 1)
	}
	ms := int64(math.Round(nominal))
	if ms < minIntervalMs {
		return minIntervalMs
	}
	return ms
}
