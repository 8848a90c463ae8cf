package main

import (
	"math"
	"sort"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/aclements/go-moremath/stats"
)

// latencySketch records delivery latencies (in time units) with bounded
// relative error.
type latencySketch struct {
	sketch *ddsketch.DDSketch
}

func newLatencySketch() *latencySketch {
	sketch, err := ddsketch.NewDefaultDDSketch(0.01)
	if err != nil {
		panic(err)
	}
	return &latencySketch{sketch}
}

func (s *latencySketch) record(d time.Duration) {
	s.sketch.Add(d.Seconds())
}

func (s *latencySketch) quantile(q float64) float64 {
	if s.sketch.GetCount() == 0 {
		return math.NaN()
	}
	vs, err := s.sketch.GetValuesAtQuantiles([]float64{q})
	if err != nil {
		return math.NaN()
	}
	return vs[0]
}

// moments summarizes one metric across trials: mean, stddev, p5, p50, p95.
func moments(xs []float64) []float64 {
	s := stats.Sample{Xs: append([]float64(nil), xs...)}
	sort.Float64s(s.Xs)
	s.Sorted = true
	return []float64{s.Mean(), s.StdDev(), s.Quantile(0.05), s.Quantile(0.50), s.Quantile(0.95)}
}
