package tick

import (
	"errors"
	"fmt"
	"sort"

	clmmmath "github.com/krazyTry/raydium-go/clmm/math"
	"github.com/krazyTry/raydium-go/shared"
)

var (
	// ErrPageMissing is returned when the bitmap advertises a page the store was not given.
	ErrPageMissing = errors.New("tick array page missing")
	// ErrNoInitializedTick is returned when no initialized tick exists in the search direction.
	ErrNoInitializedTick = fmt.Errorf("%w: no initialized tick", shared.ErrInsufficientLiquidity)
)

// Store is a read-only index over the pages of one pool.
type Store struct {
	tickSpacing int32
	pages       map[int32]*Page
	bitmap      *unifiedBitmap
}

// NewStore indexes pages against the pool bitmap and optional extension.
// A decoded page holding initialized ticks is treated as initialized even
// if the bitmap snapshot predates it.
func NewStore(tickSpacing int32, bitmap Bitmap, ext *ExtensionBitmap, pages ...*Page) (*Store, error) {
	if tickSpacing <= 0 {
		return nil, fmt.Errorf("%w: tick spacing %d", shared.ErrRange, tickSpacing)
	}
	s := &Store{
		tickSpacing: tickSpacing,
		pages:       make(map[int32]*Page, len(pages)),
		bitmap:      newUnifiedBitmap(bitmap, ext),
	}
	width := TicksPerPage(tickSpacing)
	for _, p := range pages {
		if p == nil {
			continue
		}
		if p.StartTickIndex%width != 0 {
			return nil, fmt.Errorf("%w: page start %d is not a multiple of %d", shared.ErrRange, p.StartTickIndex, width)
		}
		s.pages[p.StartTickIndex] = p
		if len(InitializedTicksIn(p)) > 0 {
			s.bitmap.set(p.StartTickIndex / width)
		}
	}
	return s, nil
}

func (s *Store) TickSpacing() int32 { return s.tickSpacing }

// Page returns the page starting at start, if the store holds it.
func (s *Store) Page(start int32) (*Page, bool) {
	p, ok := s.pages[start]
	return p, ok
}

// Starts lists the start indices of the held pages in ascending order.
func (s *Store) Starts() []int32 {
	out := make([]int32, 0, len(s.pages))
	for start := range s.pages {
		out = append(out, start)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsInitialized reports whether the bitmap marks the page starting at start.
func (s *Store) IsInitialized(start int32) bool {
	return s.bitmap.isSet(pageIndex(start, s.tickSpacing))
}

// NextInitializedPageStart scans the bitmap for the nearest initialized page
// strictly beyond the page holding fromIndex.
func (s *Store) NextInitializedPageStart(fromIndex, tickSpacing int32, towardNegative bool) (int32, bool) {
	p, ok := s.bitmap.next(pageIndex(fromIndex, tickSpacing), towardNegative)
	if !ok {
		return 0, false
	}
	return p * TicksPerPage(tickSpacing), true
}

// FirstPageStart returns the page holding currentTick if it is initialized,
// otherwise the next initialized page in the swap direction.
func (s *Store) FirstPageStart(currentTick int32, towardNegative bool) (int32, bool) {
	start := PageStartFor(currentTick, s.tickSpacing)
	if s.IsInitialized(start) {
		return start, true
	}
	return s.NextInitializedPageStart(start, s.tickSpacing, towardNegative)
}

// PagesAround returns up to count initialized page starts on each side of
// the page holding currentTick: first the pages below it, nearest first,
// then the current page and those above it.
func (s *Store) PagesAround(currentTick int32, count int) []int32 {
	var out []int32
	start := PageStartFor(currentTick, s.tickSpacing)

	from := start
	for n := 0; n < count; n++ {
		next, ok := s.NextInitializedPageStart(from, s.tickSpacing, true)
		if !ok {
			break
		}
		out = append(out, next)
		from = next
	}

	n := 0
	if s.IsInitialized(start) {
		out = append(out, start)
		n++
	}
	from = start
	for ; n < count; n++ {
		next, ok := s.NextInitializedPageStart(from, s.tickSpacing, false)
		if !ok {
			break
		}
		out = append(out, next)
		from = next
	}
	return out
}

// NextInitializedTick returns the greatest initialized tick <= tick when
// towardNegative, otherwise the smallest initialized tick > tick, together
// with the start of the page holding it.
func (s *Store) NextInitializedTick(tick int32, towardNegative bool) (*Tick, int32, error) {
	start := PageStartFor(tick, s.tickSpacing)
	if s.IsInitialized(start) {
		t, err := s.searchPage(start, tick, towardNegative, false)
		if err != nil {
			return nil, 0, err
		}
		if t != nil {
			return t, start, nil
		}
	}

	for {
		next, ok := s.NextInitializedPageStart(start, s.tickSpacing, towardNegative)
		if !ok {
			return nil, 0, ErrNoInitializedTick
		}
		t, err := s.searchPage(next, tick, towardNegative, true)
		if err != nil {
			return nil, 0, err
		}
		if t != nil {
			return t, next, nil
		}
		start = next
	}
}

func (s *Store) searchPage(start, tick int32, towardNegative, whole bool) (*Tick, error) {
	page, ok := s.pages[start]
	if !ok {
		return nil, fmt.Errorf("%w: start %d", ErrPageMissing, start)
	}
	if towardNegative {
		for i := clmmmath.TickArraySize - 1; i >= 0; i-- {
			t := &page.Ticks[i]
			idx := start + int32(i)*s.tickSpacing
			if t.IsInitialized() && (whole || idx <= tick) {
				return s.normalize(t, idx), nil
			}
		}
		return nil, nil
	}
	for i := 0; i < clmmmath.TickArraySize; i++ {
		t := &page.Ticks[i]
		idx := start + int32(i)*s.tickSpacing
		if t.IsInitialized() && (whole || idx > tick) {
			return s.normalize(t, idx), nil
		}
	}
	return nil, nil
}

// normalize fills in the slot index for pages decoded without it.
func (s *Store) normalize(t *Tick, idx int32) *Tick {
	if t.Tick == idx {
		return t
	}
	out := *t
	out.Tick = idx
	return &out
}
