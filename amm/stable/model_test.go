package stable

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krazyTry/raydium-go/shared"
)

const (
	testSamples    = 2001
	testMultiplier = 1e6
	testK          = 4e18
)

// curveModel samples x*y = testK with x from 1e9 in steps of 1e6.
func curveModel() *Model {
	m := &Model{Multiplier: testMultiplier, points: make([]point, testSamples)}
	for i := range m.points {
		x := 1e9 + float64(i)*1e6
		y := testK / x
		m.points[i] = point{X: x, Y: y, Price: testMultiplier * x / y}
	}
	return m
}

func linearRange(n int, at func(int) float64, v float64, increasing bool) (int, int, bool) {
	for i := 0; i < n; i++ {
		if at(i) == v {
			return i, i, true
		}
		if i == n-1 {
			break
		}
		a, b := at(i), at(i+1)
		if (increasing && v > a && v < b) || (!increasing && v < a && v > b) {
			return i, i + 1, true
		}
	}
	return 0, 0, false
}

func queries(rng *rand.Rand, lo, hi float64, samples func(int) float64, n int) []float64 {
	out := make([]float64, 0, 1000+n)
	for i := 0; i < 1000; i++ {
		out = append(out, lo+rng.Float64()*(hi-lo))
	}
	for i := 1; i < n; i += 97 {
		out = append(out, samples(i))
	}
	return out
}

func TestRangeByXMatchesLinearScan(t *testing.T) {
	m := curveModel()
	at := func(i int) float64 { return m.points[i].X }
	rng := rand.New(rand.NewSource(1))
	for _, x := range queries(rng, at(1), at(testSamples-1), at, testSamples) {
		wantLo, wantHi, ok := linearRange(testSamples, at, x, true)
		require.True(t, ok)
		lo, hi, err := m.RangeByX(x)
		require.NoError(t, err, "x=%g", x)
		require.Equal(t, []int{wantLo, wantHi}, []int{lo, hi}, "x=%g", x)
	}
}

func TestRangeByYMatchesLinearScan(t *testing.T) {
	m := curveModel()
	at := func(i int) float64 { return m.points[i].Y }
	rng := rand.New(rand.NewSource(2))
	for _, y := range queries(rng, at(testSamples-1), at(1), at, testSamples) {
		wantLo, wantHi, ok := linearRange(testSamples, at, y, false)
		require.True(t, ok)
		lo, hi, err := m.RangeByY(y)
		require.NoError(t, err, "y=%g", y)
		require.Equal(t, []int{wantLo, wantHi}, []int{lo, hi}, "y=%g", y)
	}
}

func TestRangeByRatioMatchesLinearScan(t *testing.T) {
	m := curveModel()
	at := m.ratioAt
	rng := rand.New(rand.NewSource(3))
	const y = 2e9
	for i := 0; i < 1000; i++ {
		r := at(1) + rng.Float64()*(at(testSamples-1)-at(1))
		x := r * y / testMultiplier
		target := x * testMultiplier / y
		wantLo, wantHi, ok := linearRange(testSamples, at, target, true)
		if !ok {
			continue
		}
		lo, hi, err := m.RangeByRatio(x, y)
		require.NoError(t, err, "ratio=%g", target)
		require.Equal(t, []int{wantLo, wantHi}, []int{lo, hi}, "ratio=%g", target)
	}
	for i := 1; i < testSamples; i += 97 {
		lo, hi, err := m.RangeByRatio(m.points[i].X, m.points[i].Y)
		require.NoError(t, err)
		require.Equal(t, []int{i, i}, []int{lo, hi})
	}
}

func TestRangeNotBracketed(t *testing.T) {
	m := curveModel()
	_, _, err := m.RangeByX(1)
	require.ErrorIs(t, err, shared.ErrBisectionNotBracketed)
	_, _, err = m.RangeByX(1e12)
	require.ErrorIs(t, err, shared.ErrBisectionNotBracketed)
	_, _, err = m.RangeByY(1e12)
	require.ErrorIs(t, err, shared.ErrBisectionNotBracketed)
	_, _, err = m.RangeByRatio(1e12, 1)
	require.ErrorIs(t, err, shared.ErrBisectionNotBracketed)
	_, err = m.DyByDxBaseIn(1e12, 1, 10)
	require.ErrorIs(t, err, shared.ErrBisectionNotBracketed)
}

func TestRatio(t *testing.T) {
	m := curveModel()
	p := m.points[700]

	s, err := m.Ratio(p.X, p.Y)
	require.NoError(t, err)
	require.InEpsilon(t, testMultiplier, s, 1e-12)

	// Doubling both reserves keeps the ratio and doubles the scale.
	s, err = m.Ratio(2*p.X, 2*p.Y)
	require.NoError(t, err)
	require.InEpsilon(t, 2*testMultiplier, s, 1e-9)

	mid := (m.points[700].X + m.points[701].X) / 2
	s, err = m.Ratio(mid, testK/mid)
	require.NoError(t, err)
	require.InEpsilon(t, testMultiplier, s, 1e-4)
}

func TestDyByDxBaseIn(t *testing.T) {
	m := curveModel()
	p := m.points[1000]

	for _, dx := range []float64{1e5, 5e6, 2e8} {
		got, err := m.DyByDxBaseIn(p.X, p.Y, dx)
		require.NoError(t, err)
		want := p.Y * dx / (p.X + dx)
		require.InEpsilon(t, want, got, 2e-3, "dx=%g", dx)
	}

	// Scaled reserves give scaled output.
	small, err := m.DyByDxBaseIn(p.X, p.Y, 5e6)
	require.NoError(t, err)
	big, err := m.DyByDxBaseIn(10*p.X, 10*p.Y, 5e7)
	require.NoError(t, err)
	require.InEpsilon(t, 10*small, big, 1e-6)
}

func TestDxByDyBaseIn(t *testing.T) {
	m := curveModel()
	p := m.points[1000]

	for _, dy := range []float64{1e4, 3e6, 1e8} {
		got, err := m.DxByDyBaseIn(p.X, p.Y, dy)
		require.NoError(t, err)
		want := p.X * dy / (p.Y + dy)
		require.InEpsilon(t, want, got, 2e-3, "dy=%g", dy)
	}
}

func TestPrice(t *testing.T) {
	m := curveModel()
	p := m.points[400]

	baseIn, err := m.Price(p.X, p.Y, true)
	require.NoError(t, err)
	require.InEpsilon(t, p.X/p.Y, baseIn, 1e-12)

	quoteIn, err := m.Price(p.X, p.Y, false)
	require.NoError(t, err)
	require.InEpsilon(t, p.Y/p.X, quoteIn, 1e-12)
	require.False(t, math.IsInf(quoteIn, 0))
}

func TestModelLayout(t *testing.T) {
	raw := &ModelDataLayout{
		AccountType:    1,
		Status:         1,
		Multiplier:     1_000_000,
		ValidDataCount: 4,
		Elements: []DataElement{
			{X: 100, Y: 400, Price: 250_000},
			{X: 200, Y: 200, Price: 1_000_000},
			{X: 400, Y: 100, Price: 4_000_000},
			{X: 800, Y: 50, Price: 16_000_000},
			{X: 9, Y: 9, Price: 9},
		},
	}
	data, err := EncodeLayout(raw)
	require.NoError(t, err)
	require.Len(t, data, 32+DataElementCount*24)

	m, err := DecodeModel(data)
	require.NoError(t, err)
	require.Equal(t, 4, m.Len())
	require.Equal(t, float64(1_000_000), m.Multiplier)
	require.Equal(t, point{X: 800, Y: 50, Price: 16_000_000}, m.points[3])

	again, err := EncodeModel(m)
	require.NoError(t, err)
	back, err := DecodeModel(again)
	require.NoError(t, err)
	require.Equal(t, m, back)

	raw.ValidDataCount = DataElementCount + 1
	data, err = EncodeLayout(raw)
	require.NoError(t, err)
	_, err = DecodeModel(data)
	require.ErrorIs(t, err, shared.ErrInvalidLayout)

	_, err = DecodeModel(data[:100])
	require.ErrorIs(t, err, shared.ErrInvalidLayout)
}
