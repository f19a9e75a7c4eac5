package memory

import (
	"fmt"
	"unsafe"

	"github.com/ordex-io/ordex/go/common"
)

type nodeColor bool

const (
	red   nodeColor = false
	black nodeColor = true
)

// treeNode is a node of the ordinal tree. It deliberately carries only the
// ordinal of its key; the key itself lives in the companion key space, so
// each key is physically stored exactly once.
type treeNode[I common.Identifier] struct {
	ordinal     I
	color       nodeColor
	left, right *treeNode[I]
}

// ordinalTree is the key → ordinal side of the index: a red-black search
// tree over the keys reachable through the companion key space. Node order
// is resolved by dereferencing the key space at the node's ordinal and
// applying the caller-supplied comparator. The tree supports insertion
// only; its height stays in O(log n) through the red-black invariants:
// no red node has a red child, every root-to-leaf path crosses the same
// number of black nodes, and the root is black.
type ordinalTree[K any, I common.Identifier] struct {
	root       *treeNode[I]
	keys       *keySpace[K, I]
	comparator common.Comparator[K]
}

func newOrdinalTree[K any, I common.Identifier](keys *keySpace[K, I], comparator common.Comparator[K]) *ordinalTree[K, I] {
	return &ordinalTree[K, I]{
		keys:       keys,
		comparator: comparator,
	}
}

// find returns the ordinal assigned to the key, or false if the key has not
// been inserted yet.
func (t *ordinalTree[K, I]) find(key K) (I, bool) {
	for n := t.root; n != nil; {
		res := t.comparator.Compare(&key, t.keys.at(n.ordinal))
		switch {
		case res < 0:
			n = n.left
		case res > 0:
			n = n.right
		default:
			return n.ordinal, true
		}
	}
	var none I
	return none, false
}

// insert descends to the key's position and, if the key is not present,
// adds a red node carrying the next free ordinal of the key space and
// rebalances on the way back up. It returns the ordinal mapped to the key
// and whether a node was added. The caller is responsible for appending
// the key to the key space afterwards.
func (t *ordinalTree[K, I]) insert(key K) (I, bool) {
	root, ordinal, added := t.insertBelow(t.root, key)
	root.color = black
	t.root = root
	return ordinal, added
}

func (t *ordinalTree[K, I]) insertBelow(n *treeNode[I], key K) (*treeNode[I], I, bool) {
	if n == nil {
		next := t.keys.size
		return &treeNode[I]{ordinal: next, color: red}, next, true
	}

	res := t.comparator.Compare(&key, t.keys.at(n.ordinal))
	switch {
	case res < 0:
		child, ordinal, added := t.insertBelow(n.left, key)
		n.left = child
		if added {
			n = lbalance(n)
		}
		return n, ordinal, added
	case res > 0:
		child, ordinal, added := t.insertBelow(n.right, key)
		n.right = child
		if added {
			n = rbalance(n)
		}
		return n, ordinal, added
	default:
		return n, n.ordinal, false
	}
}

// lbalance repairs a red-red violation in the left subtree of a black node.
// The two cases - red left child with a red left or right child - both
// restructure into a red root with two black children, pushing the
// violation (if any remains) one level up.
func lbalance[I common.Identifier](n *treeNode[I]) *treeNode[I] {
	if n.color == red {
		return n
	}
	l := n.left
	if l == nil || l.color == black {
		return n
	}
	if ll := l.left; ll != nil && ll.color == red {
		n.left = l.right
		l.right = n
		ll.color = black
		n.color = black
		l.color = red
		return l
	}
	if lr := l.right; lr != nil && lr.color == red {
		l.right = lr.left
		n.left = lr.right
		lr.left = l
		lr.right = n
		l.color = black
		n.color = black
		lr.color = red
		return lr
	}
	return n
}

// rbalance is the mirror image of lbalance for the right subtree.
func rbalance[I common.Identifier](n *treeNode[I]) *treeNode[I] {
	if n.color == red {
		return n
	}
	r := n.right
	if r == nil || r.color == black {
		return n
	}
	if rr := r.right; rr != nil && rr.color == red {
		n.right = r.left
		r.left = n
		rr.color = black
		n.color = black
		r.color = red
		return r
	}
	if rl := r.left; rl != nil && rl.color == red {
		r.left = rl.right
		n.right = rl.left
		rl.right = r
		rl.left = n
		r.color = black
		n.color = black
		rl.color = red
		return rl
	}
	return n
}

// checkProperties verifies the search order and the red-black invariants,
// returning an error describing the first violation found.
func (t *ordinalTree[K, I]) checkProperties() error {
	if t.root != nil && t.root.color != black {
		return fmt.Errorf("root node is not black")
	}
	_, err := t.checkSubtree(t.root, nil, nil)
	return err
}

// checkSubtree validates the subtree rooted at n against the exclusive key
// bounds low and high and returns its black height.
func (t *ordinalTree[K, I]) checkSubtree(n *treeNode[I], low, high *K) (int, error) {
	if n == nil {
		return 1, nil
	}

	key := t.keys.at(n.ordinal)
	if low != nil && t.comparator.Compare(key, low) <= 0 {
		return 0, fmt.Errorf("search order violated at ordinal %d", n.ordinal)
	}
	if high != nil && t.comparator.Compare(key, high) >= 0 {
		return 0, fmt.Errorf("search order violated at ordinal %d", n.ordinal)
	}

	if n.color == red {
		if n.left != nil && n.left.color == red || n.right != nil && n.right.color == red {
			return 0, fmt.Errorf("red node with red child at ordinal %d", n.ordinal)
		}
	}

	leftHeight, err := t.checkSubtree(n.left, low, key)
	if err != nil {
		return 0, err
	}
	rightHeight, err := t.checkSubtree(n.right, key, high)
	if err != nil {
		return 0, err
	}
	if leftHeight != rightHeight {
		return 0, fmt.Errorf("black height mismatch at ordinal %d: %d != %d", n.ordinal, leftHeight, rightHeight)
	}

	height := leftHeight
	if n.color == black {
		height++
	}
	return height, nil
}

func (t *ordinalTree[K, I]) GetMemoryFootprint() *common.MemoryFootprint {
	selfSize := unsafe.Sizeof(*t)
	nodeSize := unsafe.Sizeof(treeNode[I]{})
	return common.NewMemoryFootprint(selfSize + uintptr(t.keys.size)*nodeSize)
}
