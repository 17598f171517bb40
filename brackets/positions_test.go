package brackets

import (
	"errors"
	"reflect"
	"testing"
)

func TestPositionsKnownSizes(t *testing.T) {
	cases := map[int][]int{
		2:  {1, 2},
		4:  {1, 4, 2, 3},
		8:  {1, 8, 4, 5, 3, 6, 2, 7},
		16: {1, 16, 8, 9, 4, 13, 5, 12, 3, 14, 6, 11, 2, 15, 7, 10},
	}
	for size, want := range cases {
		got, err := Positions(size)
		if err != nil {
			t.Fatalf("Positions(%d): %v", size, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Positions(%d) = %v, want %v", size, got, want)
		}
	}
}

func TestPositionsExpanded(t *testing.T) {
	got, err := Positions(32)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 32 {
		t.Fatalf("expected 32 slots, got %d", len(got))
	}

	seen := make(map[int]bool)
	for _, s := range got {
		if s < 1 || s > 32 || seen[s] {
			t.Fatalf("slot order is not a permutation of 1..32: %v", got)
		}
		seen[s] = true
	}

	// Consecutive pairs are round-1 matches; every pair must sum to size+1.
	for i := 0; i < 32; i += 2 {
		if got[i]+got[i+1] != 33 {
			t.Errorf("pair (%d,%d) does not sum to 33", got[i], got[i+1])
		}
	}

	// If the lower seed always wins, the surviving order is the size-16 table.
	want16, _ := Positions(16)
	survivors := make([]int, 0, 16)
	for i := 0; i < 32; i += 2 {
		lower := got[i]
		if got[i+1] < lower {
			lower = got[i+1]
		}
		survivors = append(survivors, lower)
	}
	if !reflect.DeepEqual(survivors, want16) {
		t.Errorf("survivors %v do not reproduce the 16 table %v", survivors, want16)
	}
}

func TestPositionsInvalidSize(t *testing.T) {
	for _, size := range []int{0, 1, 3, 6, 12} {
		if _, err := Positions(size); !errors.Is(err, ErrInvalidBracketSize) {
			t.Errorf("Positions(%d): expected ErrInvalidBracketSize, got %v", size, err)
		}
	}
}
