package stable

import (
	"fmt"

	"github.com/krazyTry/raydium-go/shared"
)

type point struct {
	X     float64
	Y     float64
	Price float64
}

// Model is the sampled stable curve. X increases and Y decreases with the
// sample index. Reserves map into table units through a scale returned by
// Ratio; every evaluation is float64.
type Model struct {
	Multiplier float64
	points     []point
}

// Len returns the number of valid samples.
func (m *Model) Len() int { return len(m.points) }

func (m *Model) ratioAt(i int) float64 {
	return m.points[i].X * m.Multiplier / m.points[i].Y
}

func notBracketed(kind string, v float64) error {
	return fmt.Errorf("%w: %s %g", shared.ErrBisectionNotBracketed, kind, v)
}

// inBounds reports whether i has both neighbours.
func (m *Model) inBounds(i int) bool {
	return i > 0 && i <= len(m.points)-2
}

// RangeByRatio finds the samples whose ratio x*multiplier/y brackets that
// of (x, y). lo == hi on an exact match.
func (m *Model) RangeByRatio(x, y float64) (int, int, error) {
	target := x * m.Multiplier / y
	lo, hi := 0, len(m.points)-2
	for lo <= hi {
		mid := (lo + hi) / 2
		if !m.inBounds(mid) {
			break
		}
		cur, prev, next := m.ratioAt(mid), m.ratioAt(mid-1), m.ratioAt(mid+1)
		switch {
		case target == cur:
			return mid, mid, nil
		case target == prev:
			return mid - 1, mid - 1, nil
		case target == next:
			return mid + 1, mid + 1, nil
		case target < prev:
			hi = mid - 1
		case target > prev && target < cur:
			return mid - 1, mid, nil
		case target > cur && target < next:
			return mid, mid + 1, nil
		default:
			lo = mid + 1
		}
	}
	return 0, 0, notBracketed("ratio", target)
}

// RangeByX finds the samples bracketing table coordinate x.
func (m *Model) RangeByX(x float64) (int, int, error) {
	lo, hi := 0, len(m.points)-2
	for lo <= hi {
		mid := (lo + hi) / 2
		if !m.inBounds(mid) {
			break
		}
		cur, prev, next := m.points[mid].X, m.points[mid-1].X, m.points[mid+1].X
		switch {
		case x == cur:
			return mid, mid, nil
		case x == prev:
			return mid - 1, mid - 1, nil
		case x == next:
			return mid + 1, mid + 1, nil
		case x < prev:
			hi = mid - 1
		case x > prev && x < cur:
			return mid - 1, mid, nil
		case x > cur && x < next:
			return mid, mid + 1, nil
		default:
			lo = mid + 1
		}
	}
	return 0, 0, notBracketed("x", x)
}

// RangeByY finds the samples bracketing table coordinate y. Y decreases
// with the index, so the search moves right on smaller values.
func (m *Model) RangeByY(y float64) (int, int, error) {
	lo, hi := 0, len(m.points)-2
	for lo <= hi {
		mid := (lo + hi) / 2
		if !m.inBounds(mid) {
			break
		}
		cur, prev, next := m.points[mid].Y, m.points[mid-1].Y, m.points[mid+1].Y
		switch {
		case y == cur:
			return mid, mid, nil
		case y == prev:
			return mid - 1, mid - 1, nil
		case y == next:
			return mid + 1, mid + 1, nil
		case y < next:
			lo = mid + 1
		case y < prev && y > cur:
			return mid - 1, mid, nil
		case y < cur && y > next:
			return mid, mid + 1, nil
		default:
			hi = mid - 1
		}
	}
	return 0, 0, notBracketed("y", y)
}

// Ratio returns the scale s mapping real reserves to table units:
// table = real * multiplier / s.
func (m *Model) Ratio(x, y float64) (float64, error) {
	lo, hi, err := m.RangeByRatio(x, y)
	if err != nil {
		return 0, err
	}
	if lo == hi {
		return x * m.Multiplier / m.points[lo].X, nil
	}
	x1, y1 := m.points[lo].X, m.points[lo].Y
	x2, y2 := m.points[hi].X, m.points[hi].Y
	a := y * (x2*y1 - x1*y2)
	b := x1 * a
	c := (x2 - x1) * (x*y1 - x1*y) * y2
	return x * m.Multiplier * a / (b + c), nil
}

func (m *Model) toTable(real, scale float64) float64 { return real * m.Multiplier / scale }

func (m *Model) toReal(table, scale float64) float64 { return table * scale / m.Multiplier }

// DataByX moves along the curve from x by dx and returns the price and y
// there. exact is set when x already lies on the bracketing segment, in
// which case price is the segment's endpoint price and y its endpoint y.
func (m *Model) DataByX(x, dx float64, add bool) (price, y float64, exact bool, err error) {
	nx := x - dx
	if add {
		nx = x + dx
	}
	lo, hi, err := m.RangeByX(nx)
	if err != nil {
		return 0, 0, false, err
	}
	if lo == hi {
		return m.points[hi].Price, m.points[hi].Y, false, nil
	}
	p1, p2 := m.points[lo], m.points[hi]
	if x >= p1.X && x <= p2.X {
		if add {
			return p2.Price, p2.Y, true, nil
		}
		return p1.Price, p1.Y, true, nil
	}
	price = p1.Price + (p2.Price-p1.Price)*(x-p1.X)/(p2.X-p1.X)
	if add {
		y = p1.Y - (nx-p1.X)*m.Multiplier/p2.Price
	} else {
		y = p2.Y + (p2.X-nx)*m.Multiplier/p1.Price
	}
	return price, y, false, nil
}

// DataByY is DataByX along the y axis. add moves y down.
func (m *Model) DataByY(y, dy float64, add bool) (price, x float64, exact bool, err error) {
	ny := y + dy
	if add {
		ny = y - dy
	}
	lo, hi, err := m.RangeByY(ny)
	if err != nil {
		return 0, 0, false, err
	}
	if lo == hi {
		return m.points[hi].Price, m.points[hi].X, false, nil
	}
	p1, p2 := m.points[lo], m.points[hi]
	if y >= p2.Y && y <= p1.Y {
		if add {
			return p2.Price, p2.X, true, nil
		}
		return p1.Price, p1.X, true, nil
	}
	price = p1.Price + (p2.Price-p1.Price)*(p1.Y-y)/(p1.Y-p2.Y)
	if add {
		x = p1.X + p2.Price*(p1.Y-ny)/m.Multiplier
	} else {
		x = p2.X - p1.Price*(ny-p2.Y)/m.Multiplier
	}
	return price, x, false, nil
}

// DyByDxBaseIn returns the y received for selling dx into reserves (x, y).
func (m *Model) DyByDxBaseIn(xReal, yReal, dxReal float64) (float64, error) {
	scale, err := m.Ratio(xReal, yReal)
	if err != nil {
		return 0, err
	}
	x := m.toTable(xReal, scale)
	y := m.toTable(yReal, scale)
	dx := m.toTable(dxReal, scale)

	price, ny, exact, err := m.DataByX(x, dx, true)
	if err != nil {
		return 0, err
	}
	if exact {
		return dxReal * m.Multiplier / price, nil
	}
	return m.toReal(y-ny, scale), nil
}

// DxByDyBaseIn returns the x received for selling dy into reserves (x, y).
func (m *Model) DxByDyBaseIn(xReal, yReal, dyReal float64) (float64, error) {
	scale, err := m.Ratio(xReal, yReal)
	if err != nil {
		return 0, err
	}
	x := m.toTable(xReal, scale)
	y := m.toTable(yReal, scale)
	dy := m.toTable(dyReal, scale)

	price, nx, exact, err := m.DataByY(y, dy, false)
	if err != nil {
		return 0, err
	}
	if exact {
		return dyReal * price / m.Multiplier, nil
	}
	return m.toReal(x-nx, scale), nil
}

// Price is the spot price at reserves (x, y): x per y when baseIn, y per x otherwise.
func (m *Model) Price(xReal, yReal float64, baseIn bool) (float64, error) {
	scale, err := m.Ratio(xReal, yReal)
	if err != nil {
		return 0, err
	}
	price, _, _, err := m.DataByX(m.toTable(xReal, scale), 0, false)
	if err != nil {
		return 0, err
	}
	p := price / m.Multiplier
	if p == 0 {
		return 0, notBracketed("price", p)
	}
	if baseIn {
		return p, nil
	}
	return 1 / p, nil
}
