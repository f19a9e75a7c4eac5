package common

import (
	"math"
	"testing"
)

func TestKeyComparatorOrdersLexicographically(t *testing.T) {
	c := KeyComparator{}
	a := Key{0x01}
	b := Key{0x02}

	if c.Compare(&a, &b) >= 0 {
		t.Errorf("A is not ordered below B")
	}
	if c.Compare(&b, &a) <= 0 {
		t.Errorf("B is not ordered above A")
	}
	if c.Compare(&a, &a) != 0 {
		t.Errorf("A does not compare equal to itself")
	}
}

func TestOrderedComparator(t *testing.T) {
	c := OrderedComparator[string]{}
	low, high := "aaa", "abc"

	if c.Compare(&low, &high) >= 0 {
		t.Errorf("aaa is not ordered below abc")
	}
	if c.Compare(&high, &low) <= 0 {
		t.Errorf("abc is not ordered above aaa")
	}
	if c.Compare(&low, &low) != 0 {
		t.Errorf("aaa does not compare equal to itself")
	}
}

func TestUint32ComparatorHandlesFullValueRange(t *testing.T) {
	c := Uint32Comparator{}

	pairs := []struct {
		low, high uint32
	}{
		{0, 1},
		{0, math.MaxUint32},
		{math.MaxInt32, math.MaxInt32 + 1},
		{1, math.MaxUint32},
	}
	for _, pair := range pairs {
		if c.Compare(&pair.low, &pair.high) >= 0 {
			t.Errorf("%d is not ordered below %d", pair.low, pair.high)
		}
		if c.Compare(&pair.high, &pair.low) <= 0 {
			t.Errorf("%d is not ordered above %d", pair.high, pair.low)
		}
	}

	val := uint32(math.MaxUint32)
	if c.Compare(&val, &val) != 0 {
		t.Errorf("max value does not compare equal to itself")
	}
}
