package txn

import (
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/types"
)

// MaxGroupSize is the maximum number of transactions in an atomic group
const MaxGroupSize = 16

// Group is an ordered sequence of transactions which settle atomically
type Group []types.Transaction

func (g Group) Size() int {
	return len(g)
}

// At returns transaction at index i
func (g Group) At(i int) (*types.Transaction, error) {
	if i < 0 || i >= len(g) {
		return nil, fmt.Errorf("transaction index %d out of range: group size is %d", i, len(g))
	}
	return &g[i], nil
}

// CheckAuthorizing checks shape of the group and the index of the transaction being authorized
func (g Group) CheckAuthorizing(self int) error {
	if len(g) == 0 || len(g) > MaxGroupSize {
		return fmt.Errorf("wrong group size %d: must be between 1 and %d", len(g), MaxGroupSize)
	}
	if self < 0 || self >= len(g) {
		return fmt.Errorf("index of the authorized transaction %d is out of range [0,%d)", self, len(g))
	}
	return nil
}
