package tick

import (
	"math/bits"
)

const (
	// BitmapWords is the size of the pool's default bitmap in u64 words.
	BitmapWords = 16
	// ExtensionChunks is the number of 512-page chunks on each side of the
	// default bitmap covered by the bitmap extension account.
	ExtensionChunks = 14
	// ChunkWords is the size of one extension chunk in u64 words.
	ChunkWords = 8

	defaultHalf  = BitmapWords * 64 / 2
	chunkPages   = ChunkWords * 64
	extendedHalf = defaultHalf + ExtensionChunks*chunkPages
	unifiedWords = 2 * extendedHalf / 64
)

// Bitmap is the pool's default tick-array bitmap. Bit floor(start/width)+512
// is set when the page at start is initialized.
type Bitmap [BitmapWords]uint64

// ExtensionBitmap covers the pages beyond the default bitmap. Positive[i]
// holds pages [512(i+1), 512(i+2)); Negative[i] holds pages
// [-512(i+2), -512(i+1)). Within a chunk bits ascend with the page index.
type ExtensionBitmap struct {
	Positive [ExtensionChunks][ChunkWords]uint64
	Negative [ExtensionChunks][ChunkWords]uint64
}

// unifiedBitmap concatenates the reversed negative chunks, the default
// bitmap and the positive chunks. Page p maps to bit p+extendedHalf.
type unifiedBitmap [unifiedWords]uint64

func newUnifiedBitmap(def Bitmap, ext *ExtensionBitmap) *unifiedBitmap {
	u := &unifiedBitmap{}
	w := 0
	if ext != nil {
		for i := ExtensionChunks - 1; i >= 0; i-- {
			w += copy(u[w:], ext.Negative[i][:])
		}
	} else {
		w += ExtensionChunks * ChunkWords
	}
	w += copy(u[w:], def[:])
	if ext != nil {
		for i := 0; i < ExtensionChunks; i++ {
			w += copy(u[w:], ext.Positive[i][:])
		}
	}
	return u
}

func (u *unifiedBitmap) inRange(page int32) bool {
	return page >= -extendedHalf && page < extendedHalf
}

func (u *unifiedBitmap) isSet(page int32) bool {
	if !u.inRange(page) {
		return false
	}
	b := page + extendedHalf
	return u[b/64]&(1<<(uint(b)%64)) != 0
}

func (u *unifiedBitmap) set(page int32) {
	if !u.inRange(page) {
		return
	}
	b := page + extendedHalf
	u[b/64] |= 1 << (uint(b) % 64)
}

// next returns the nearest set page strictly beyond page in the requested direction.
func (u *unifiedBitmap) next(page int32, towardNegative bool) (int32, bool) {
	if towardNegative {
		b := int(page+extendedHalf) - 1
		if b >= len(u)*64 {
			b = len(u)*64 - 1
		}
		for b >= 0 {
			word := u[b/64] & (^uint64(0) >> (63 - uint(b%64)))
			if word != 0 {
				return int32((b/64)*64+63-bits.LeadingZeros64(word)) - extendedHalf, true
			}
			b = (b/64)*64 - 1
		}
		return 0, false
	}
	b := int(page+extendedHalf) + 1
	if b < 0 {
		b = 0
	}
	for b < len(u)*64 {
		word := u[b/64] & (^uint64(0) << uint(b%64))
		if word != 0 {
			return int32((b/64)*64+bits.TrailingZeros64(word)) - extendedHalf, true
		}
		b = (b/64 + 1) * 64
	}
	return 0, false
}

// IsSet reports whether page start is marked in the default bitmap.
func (b *Bitmap) IsSet(start, tickSpacing int32) bool {
	bit := pageIndex(start, tickSpacing) + defaultHalf
	if bit < 0 || bit >= BitmapWords*64 {
		return false
	}
	return b[bit/64]&(1<<(uint(bit)%64)) != 0
}

// Set marks page start in the default bitmap. Pages outside its range are ignored.
func (b *Bitmap) Set(start, tickSpacing int32) {
	bit := pageIndex(start, tickSpacing) + defaultHalf
	if bit < 0 || bit >= BitmapWords*64 {
		return
	}
	b[bit/64] |= 1 << (uint(bit) % 64)
}

// Set marks page start in the extension. Pages inside the default range are ignored.
func (e *ExtensionBitmap) Set(start, tickSpacing int32) {
	p := pageIndex(start, tickSpacing)
	switch {
	case p >= defaultHalf && p < extendedHalf:
		off := p - defaultHalf
		chunk, bit := off/chunkPages, off%chunkPages
		e.Positive[chunk][bit/64] |= 1 << (uint(bit) % 64)
	case p < -defaultHalf && p >= -extendedHalf:
		off := p + extendedHalf
		chunk := ExtensionChunks - 1 - off/chunkPages
		bit := off % chunkPages
		e.Negative[chunk][bit/64] |= 1 << (uint(bit) % 64)
	}
}
