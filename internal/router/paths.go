package router

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"auctionSolver/internal/model"
)

// tokenSequences enumerates all simple token paths from sell to buy whose
// interior tokens come from the base-token set. Sequences are produced in
// deterministic order: by hop count ascending, then lexicographic over the
// interior tokens. The direct pair is the single one-hop sequence.
func tokenSequences(sell, buy common.Address, bases []common.Address, maxHops int) [][]common.Address {
	if maxHops < 1 {
		maxHops = 1
	}
	seen := map[common.Address]bool{sell: true, buy: true}
	interior := make([]common.Address, 0, len(bases))
	for _, base := range bases {
		if !seen[base] {
			seen[base] = true
			interior = append(interior, base)
		}
	}
	sort.Slice(interior, func(i, j int) bool {
		return model.TokenLess(interior[i], interior[j])
	})

	var sequences [][]common.Address
	used := make([]bool, len(interior))
	current := make([]common.Address, 0, maxHops+1)
	current = append(current, sell)

	var extend func(remaining int)
	extend = func(remaining int) {
		if remaining == 0 {
			sequence := make([]common.Address, 0, len(current)+1)
			sequence = append(sequence, current...)
			sequence = append(sequence, buy)
			sequences = append(sequences, sequence)
			return
		}
		for i, token := range interior {
			if used[i] {
				continue
			}
			used[i] = true
			current = append(current, token)
			extend(remaining - 1)
			current = current[:len(current)-1]
			used[i] = false
		}
	}

	for hops := 1; hops <= maxHops; hops++ {
		extend(hops - 1)
	}
	return sequences
}
