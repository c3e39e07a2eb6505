package rating

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueBandBoundaries(t *testing.T) {
	const c = 14.0

	require.Equal(t, 16.15, Value(c, 1010000))
	require.Equal(t, 16.15, Value(c, 1009000))
	require.Equal(t, 16.00, Value(c, 1007500))
	require.Equal(t, 15.50, Value(c, 1005000))
	require.Equal(t, 15.00, Value(c, 1000000))
	require.Equal(t, float64(0), Value(c, 974999))
	require.Equal(t, float64(0), Value(c, 0))
}

func TestValueContinuity(t *testing.T) {
	const c = 13.5
	boundaries := []int{975000, 1000000, 1005000, 1007500, 1009000}

	for _, b := range boundaries {
		below := Value(c, b-1)
		at := Value(c, b)
		if b == 975000 {
			// the only discontinuity is the drop to zero below S
			require.InDelta(t, c, at, 1e-9)
			require.Equal(t, float64(0), below)
			continue
		}
		require.InDelta(t, at, below, 0.00021, "boundary %d", b)
	}
}

func TestValueMonotonic(t *testing.T) {
	const c = 12.0
	prev := -1.0
	for score := 970000; score <= 1010000; score += 250 {
		v := Value(c, score)
		require.GreaterOrEqual(t, v, prev, "score %d", score)
		prev = v
	}
}

func perfsOf(n int, constant float64, score int, prefix string) []Performance {
	out := make([]Performance, n)
	for i := range out {
		out[i] = Performance{
			SongId:   fmt.Sprintf("%s%d", prefix, i),
			Constant: constant,
			Score:    score,
		}
	}
	return out
}

func TestSelectFrameSizes(t *testing.T) {
	perfs := append(
		perfsOf(40, 13.0, 1000000, "old"),
		perfsOf(25, 13.0, 1000000, "new")...,
	)
	isNew := func(id string) bool { return id[:3] == "new" }

	selection := Select(perfs, isNew)
	require.Len(t, selection.Best, 30)
	require.Len(t, selection.New, 20)
	require.Equal(t, 14.0, selection.Rating)

	seen := map[string]bool{}
	for _, e := range append(selection.Best, selection.New...) {
		key := e.SongId + "/" + e.Difficulty.Code()
		require.False(t, seen[key], "duplicate entry %s", key)
		seen[key] = true
	}
}

func TestSelectPartitionsAreIndependent(t *testing.T) {
	// a monster current-version score must not displace all-time
	// entries, and vice versa
	perfs := append(
		perfsOf(30, 12.0, 1000000, "old"),
		Performance{SongId: "newhit", Constant: 15.4, Score: 1010000},
	)

	selection := Select(perfs, func(id string) bool { return id == "newhit" })
	require.Len(t, selection.Best, 30)
	require.Len(t, selection.New, 1)
	require.Equal(t, "newhit", selection.New[0].SongId)
	for _, e := range selection.Best {
		require.NotEqual(t, "newhit", e.SongId)
	}
}

func TestSelectMaxScoreCapBand(t *testing.T) {
	perfs := []Performance{{SongId: "cap", Constant: 14.0, Score: 1010000}}

	selection := Select(perfs, func(string) bool { return true })
	require.Empty(t, selection.Best)
	require.Len(t, selection.New, 1)
	require.Equal(t, 16.15, selection.New[0].Rating)
	require.Equal(t, 16.15, selection.Rating)
}

func TestSelectEmpty(t *testing.T) {
	selection := Select(nil, nil)
	require.Empty(t, selection.Best)
	require.Empty(t, selection.New)
	require.Equal(t, float64(0), selection.Rating)
}

func TestConstantFromValue(t *testing.T) {
	scores := []int{975000, 990000, 1000000, 1003000, 1005000, 1006999, 1007500, 1008500, 1009000, 1010000}
	const c = 13.7

	for _, score := range scores {
		recovered, ok := ConstantFromValue(score, Value(c, score))
		require.True(t, ok, "score %d", score)
		require.InDelta(t, c, recovered, 1e-9, "score %d", score)
	}

	_, ok := ConstantFromValue(900000, 5.0)
	require.False(t, ok)
}

func TestConstantFromDelta(t *testing.T) {
	const c = 14.2
	score := 1008000
	delta := Value(c, score) + BonusAllJustice

	recovered, ok := ConstantFromDelta(score, delta, BonusAllJustice)
	require.True(t, ok)
	require.InDelta(t, c, recovered, 1e-9)
}

func TestRatingRounding(t *testing.T) {
	perfs := []Performance{
		{SongId: "a", Constant: 13.0, Score: 1000001},
		{SongId: "b", Constant: 13.0, Score: 1000002},
		{SongId: "c", Constant: 13.0, Score: 1000004},
	}
	selection := Select(perfs, nil)
	mean := (Value(13.0, 1000001) + Value(13.0, 1000002) + Value(13.0, 1000004)) / 3
	require.Equal(t, math.Round(mean*100)/100, selection.Rating)
}
