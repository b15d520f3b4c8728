// Package stats derives per-group summaries from loaded tables. Everything
// here is a pure function of its inputs: identical tables always produce
// identical summaries.
package stats

import (
	"fmt"
	"math"
	"strconv"

	"github.com/hydroponica/ecdash/internal/dataset"
)

// FieldMean is the arithmetic mean of one numeric field plus the number of
// values that went into it. A mean over zero values is NaN, never zero, so
// "no data" stays distinguishable from "measured zero". NaN marshals to JSON
// null.
type FieldMean struct {
	Count int
	Mean  float64
}

func (m FieldMean) MarshalJSON() ([]byte, error) {
	if m.Count == 0 || math.IsNaN(m.Mean) {
		return []byte(fmt.Sprintf(`{"count":%d,"mean":null}`, m.Count)), nil
	}
	return []byte(fmt.Sprintf(`{"count":%d,"mean":%s}`, m.Count, strconv.FormatFloat(m.Mean, 'f', -1, 64))), nil
}

// Corr is a Pearson correlation coefficient; NaN (undefined) marshals to null.
type Corr float64

func (c Corr) MarshalJSON() ([]byte, error) {
	f := float64(c)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// GroupSummary is the per-group aggregate recomputed on every load.
type GroupSummary struct {
	Group string  `json:"group"`
	EC    float64 `json:"ec"`

	EnvCount    int       `json:"env_count"`
	Temperature FieldMean `json:"temperature"`
	Humidity    FieldMean `json:"humidity"`
	PH          FieldMean `json:"ph"`
	MeasuredEC  FieldMean `json:"measured_ec"`

	GrowthCount int       `json:"growth_count"`
	LeafCount   FieldMean `json:"leaf_count"`
	ShootLength FieldMean `json:"shoot_length_mm"`
	RootLength  FieldMean `json:"root_length_mm"`
	FreshWeight FieldMean `json:"fresh_weight_g"`

	// Correlation between shoot and root length across this group's
	// specimens; NaN with fewer than two complete pairs or zero variance.
	ShootRootCorr Corr `json:"shoot_root_corr"`
}

// Best identifies the best-performing group by mean fresh weight.
type Best struct {
	Group           string  `json:"group"`
	EC              float64 `json:"ec"`
	MeanFreshWeight float64 `json:"mean_fresh_weight"`
}

// acc is a sum/count accumulator. Order of Add calls cannot affect the mean.
type acc struct {
	sum float64
	n   int
}

func (a *acc) Add(v float64) {
	if math.IsNaN(v) {
		return
	}
	a.sum += v
	a.n++
}

func (a *acc) Mean() FieldMean {
	if a.n == 0 {
		return FieldMean{Count: 0, Mean: math.NaN()}
	}
	return FieldMean{Count: a.n, Mean: a.sum / float64(a.n)}
}

// pairAcc accumulates the sums needed for an exact Pearson correlation.
type pairAcc struct {
	n, sumX, sumY, sumXX, sumYY, sumXY float64
}

func (p *pairAcc) Add(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	p.n++
	p.sumX += x
	p.sumY += y
	p.sumXX += x * x
	p.sumYY += y * y
	p.sumXY += x * y
}

func (p *pairAcc) R() float64 {
	if p.n < 2 {
		return math.NaN()
	}
	denom := math.Sqrt((p.n*p.sumXX - p.sumX*p.sumX) * (p.n*p.sumYY - p.sumY*p.sumY))
	if denom == 0 {
		return math.NaN()
	}
	r := (p.n*p.sumXY - p.sumX*p.sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Summarize computes one GroupSummary per configured group, in configured
// order. Groups with no records keep NaN means rather than zeros.
func Summarize(t *dataset.Tables) []GroupSummary {
	growthByGroup := make(map[string][]dataset.GrowthRecord, len(t.Groups))
	for _, g := range t.Growth {
		growthByGroup[g.Group] = append(growthByGroup[g.Group], g)
	}

	out := make([]GroupSummary, 0, len(t.Groups))
	for _, grp := range t.Groups {
		s := GroupSummary{Group: grp.Name, EC: grp.EC}

		var temp, hum, ph, ec acc
		for _, r := range t.Env[grp.Name] {
			temp.Add(r.Temperature)
			hum.Add(r.Humidity)
			ph.Add(r.PH)
			ec.Add(r.EC)
		}
		s.EnvCount = len(t.Env[grp.Name])
		s.Temperature = temp.Mean()
		s.Humidity = hum.Mean()
		s.PH = ph.Mean()
		s.MeasuredEC = ec.Mean()

		var leaf, shoot, root, weight acc
		var sr pairAcc
		for _, r := range growthByGroup[grp.Name] {
			leaf.Add(r.LeafCount)
			shoot.Add(r.ShootLength)
			root.Add(r.RootLength)
			weight.Add(r.FreshWeight)
			sr.Add(r.ShootLength, r.RootLength)
		}
		s.GrowthCount = len(growthByGroup[grp.Name])
		s.LeafCount = leaf.Mean()
		s.ShootLength = shoot.Mean()
		s.RootLength = root.Mean()
		s.FreshWeight = weight.Mean()
		s.ShootRootCorr = Corr(sr.R())

		out = append(out, s)
	}
	return out
}

// BestByFreshWeight returns the group with the maximum mean fresh weight.
// Ties go to the earlier group in configured order. ok is false when no group
// has any fresh weight data.
func BestByFreshWeight(sums []GroupSummary) (Best, bool) {
	var best Best
	found := false
	for _, s := range sums {
		if s.FreshWeight.Count == 0 || math.IsNaN(s.FreshWeight.Mean) {
			continue
		}
		if !found || s.FreshWeight.Mean > best.MeanFreshWeight {
			best = Best{Group: s.Group, EC: s.EC, MeanFreshWeight: s.FreshWeight.Mean}
			found = true
		}
	}
	return best, found
}
