package memory

import (
	"math/rand"
	"testing"

	"github.com/ordex-io/ordex/go/common"
)

func newTestTree() (*ordinalTree[uint32, uint32], *keySpace[uint32, uint32]) {
	keys := newKeySpace[uint32, uint32](0)
	return newOrdinalTree[uint32, uint32](keys, common.Uint32Comparator{}), keys
}

// add inserts the key the way the index does, appending it to the key space
// when a new node was created.
func add(t *testing.T, tree *ordinalTree[uint32, uint32], keys *keySpace[uint32, uint32], key uint32) uint32 {
	t.Helper()
	ordinal, added := tree.insert(key)
	if added {
		if appended := keys.append(key); appended != ordinal {
			t.Fatalf("tree assigned ordinal %d, key space %d", ordinal, appended)
		}
	}
	return ordinal
}

func TestEmptyTreeFindsNothing(t *testing.T) {
	tree, _ := newTestTree()
	if _, exists := tree.find(5); exists {
		t.Errorf("empty tree claims to contain a key")
	}
	if err := tree.checkProperties(); err != nil {
		t.Errorf("empty tree is not valid: %s", err)
	}
}

func TestSequentialInsertsKeepTreeValid(t *testing.T) {
	tree, keys := newTestTree()
	for i := uint32(0); i < 1000; i++ {
		if ordinal := add(t, tree, keys, i); ordinal != i {
			t.Fatalf("key %d assigned ordinal %d", i, ordinal)
		}
		if err := tree.checkProperties(); err != nil {
			t.Fatalf("tree invalid after inserting %d keys: %s", i+1, err)
		}
	}
	for i := uint32(0); i < 1000; i++ {
		ordinal, exists := tree.find(i)
		if !exists || ordinal != i {
			t.Errorf("key %d not found or mapped to wrong ordinal", i)
		}
	}
}

func TestReverseInsertsKeepTreeValid(t *testing.T) {
	tree, keys := newTestTree()
	for i := 0; i < 1000; i++ {
		add(t, tree, keys, uint32(1000-i))
		if err := tree.checkProperties(); err != nil {
			t.Fatalf("tree invalid after inserting %d keys: %s", i+1, err)
		}
	}
}

func TestRandomInsertsKeepTreeValid(t *testing.T) {
	tree, keys := newTestTree()
	rnd := rand.New(rand.NewSource(486))

	inserted := make(map[uint32]uint32)
	for i := 0; i < 2000; i++ {
		key := uint32(rnd.Intn(1000))
		ordinal := add(t, tree, keys, key)
		if expected, exists := inserted[key]; exists {
			if ordinal != expected {
				t.Fatalf("key %d re-assigned from ordinal %d to %d", key, expected, ordinal)
			}
		} else {
			inserted[key] = ordinal
		}
	}

	if err := tree.checkProperties(); err != nil {
		t.Fatalf("tree invalid after random inserts: %s", err)
	}
	if int(keys.size) != len(inserted) {
		t.Errorf("key space holds %d keys, %d distinct keys inserted", keys.size, len(inserted))
	}
	for key, expected := range inserted {
		ordinal, exists := tree.find(key)
		if !exists || ordinal != expected {
			t.Errorf("key %d not found or mapped to wrong ordinal", key)
		}
	}
}

func TestDuplicateInsertDoesNotAddNode(t *testing.T) {
	tree, keys := newTestTree()
	add(t, tree, keys, 7)

	ordinal, added := tree.insert(7)
	if added {
		t.Errorf("duplicate insert reported a new node")
	}
	if ordinal != 0 {
		t.Errorf("duplicate insert returned ordinal %d and not 0", ordinal)
	}
	if keys.size != 1 {
		t.Errorf("key space grew on duplicate insert")
	}
}
