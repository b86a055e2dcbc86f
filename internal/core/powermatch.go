package core

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// PowerTolerance is the matching tolerance in diopters, applied on every axis.
// It absorbs rounding artifacts from quarter-diopter-stepped inventories
// without conflating adjacent distinct powers, which differ by at least 0.25.
const PowerTolerance = 0.125

// PowerFilter holds the user-entered filter values for the three power axes.
// A nil axis means "no filter on that axis".
type PowerFilter struct {
	Sph *float64
	Cyl *float64
	Add *float64
}

// ParsePowerFilter builds a PowerFilter from raw filter text. Blank or
// non-numeric text degrades to an absent filter on that axis — malformed
// input is normalized, never an error.
func ParsePowerFilter(sphText, cylText, addText string) PowerFilter {
	return PowerFilter{
		Sph: parseAxis(sphText),
		Cyl: parseAxis(cylText),
		Add: parseAxis(addText),
	}
}

func parseAxis(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Active reports whether any axis is filtered.
func (f PowerFilter) Active() bool {
	return f.Sph != nil || f.Cyl != nil || f.Add != nil
}

// PowerMatch is a PowerRecord annotated with its match score. Lower score is
// a closer match; 0 means exact on every active axis.
type PowerMatch struct {
	PowerRecord
	Score float64 `json:"score"`
}

// MatchPowers filters records against the active axes and ranks the survivors
// best-match first. With no active filter every record is retained (score 0)
// and the result is the default (sph, cyl, addition) ordering. A record
// without an addition never matches an active Add filter, even if its
// sph/cyl would. The input slice is not modified.
func MatchPowers(records []PowerRecord, f PowerFilter) []PowerMatch {
	matches := make([]PowerMatch, 0, len(records))
	for _, r := range records {
		score, ok := scoreRecord(r, f)
		if !ok {
			continue
		}
		matches = append(matches, PowerMatch{PowerRecord: r, Score: score})
	}

	active := f.Active()
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if active && a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Sph != b.Sph {
			return a.Sph < b.Sph
		}
		if a.Cyl != b.Cyl {
			return a.Cyl < b.Cyl
		}
		if a.Addition != nil && b.Addition != nil && *a.Addition != *b.Addition {
			return *a.Addition < *b.Addition
		}
		return false
	})
	return matches
}

// scoreRecord returns the summed axis distance for r under f, and whether r
// satisfies every active axis within PowerTolerance.
func scoreRecord(r PowerRecord, f PowerFilter) (float64, bool) {
	var score float64

	if f.Sph != nil {
		d := math.Abs(r.Sph - *f.Sph)
		if d > PowerTolerance {
			return 0, false
		}
		score += d
	}
	if f.Cyl != nil {
		d := math.Abs(r.Cyl - *f.Cyl)
		if d > PowerTolerance {
			return 0, false
		}
		score += d
	}
	if f.Add != nil {
		if r.Addition == nil {
			return 0, false
		}
		d := math.Abs(*r.Addition - *f.Add)
		if d > PowerTolerance {
			return 0, false
		}
		score += d
	}
	return score, true
}
