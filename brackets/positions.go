package brackets

import (
	"errors"
	"fmt"
)

var ErrInvalidBracketSize = errors.New("bracket size must be a power of two >= 2")

// Slot orders for the common sizes. Consecutive pairs form round-1 matches;
// the layout guarantees seeds 1 and 2 can only meet in the final.
var positionTables = map[int][]int{
	2:  {1, 2},
	4:  {1, 4, 2, 3},
	8:  {1, 8, 4, 5, 3, 6, 2, 7},
	16: {1, 16, 8, 9, 4, 13, 5, 12, 3, 14, 6, 11, 2, 15, 7, 10},
}

// Positions returns the canonical seeding-slot order for a power-of-two
// bracket size. Sizes beyond 16 are built by the interleave rule: each seed s
// in the previous order is followed by its complement (2*prevSize+1)-s.
func Positions(size int) ([]int, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBracketSize, size)
	}

	if table, ok := positionTables[size]; ok {
		out := make([]int, len(table))
		copy(out, table)
		return out, nil
	}

	cur := positionTables[16]
	for len(cur) < size {
		complement := 2*len(cur) + 1
		next := make([]int, 0, len(cur)*2)
		for _, s := range cur {
			next = append(next, s, complement-s)
		}
		cur = next
	}
	return cur, nil
}
