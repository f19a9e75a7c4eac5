package common

import (
	"fmt"
	"testing"
)

func TestKeccak256KnownHashes(t *testing.T) {
	tests := []struct {
		input []byte
		hash  string
	}{
		{[]byte{}, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{[]byte("abc"), "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}

	for _, test := range tests {
		if got := fmt.Sprintf("%x", Keccak256(test.input)); got != test.hash {
			t.Errorf("keccak of %q is %s, wanted %s", test.input, got, test.hash)
		}
	}
}

func TestKeccak256IsReusable(t *testing.T) {
	first := Keccak256([]byte("abc"))
	_ = Keccak256([]byte("something else"))
	second := Keccak256([]byte("abc"))
	if first != second {
		t.Errorf("repeated hashing of the same input differs")
	}
}
