package query

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/roaring64"
)

// distinctSet remembers values already seen. Integers and dates, the
// common COUNT(DISTINCT) inputs, go into roaring bitmaps; other values are
// keyed by their type and text form.
type distinctSet struct {
	ints  *roaring64.Bitmap
	days  *roaring64.Bitmap
	other map[string]struct{}
}

func newDistinctSet() *distinctSet {
	return &distinctSet{
		ints:  roaring64.New(),
		days:  roaring64.New(),
		other: make(map[string]struct{}),
	}
}

// add records v and reports whether it was not seen before.
func (d *distinctSet) add(v interface{}) bool {
	switch val := normalizeValue(v).(type) {
	case int64:
		return d.ints.CheckedAdd(orderedUint64(val))
	case time.Time:
		if isMidnight(val) {
			return d.days.CheckedAdd(orderedUint64(val.Unix() / 86400))
		}
	}

	key := fmt.Sprintf("%T:%s", v, FormatValue(v))
	if _, seen := d.other[key]; seen {
		return false
	}
	d.other[key] = struct{}{}
	return true
}

// orderedUint64 maps int64 onto uint64 preserving order.
func orderedUint64(n int64) uint64 {
	return uint64(n) ^ (1 << 63)
}

func isMidnight(t time.Time) bool {
	t = t.UTC()
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
