package pairing

import (
	"sort"

	"github.com/Dosada05/volley-mixer/models"
)

// byeCount returns how many of n players sit out. The remainder keeps the
// team count even; a court limit benches everyone beyond 4 per court.
func byeCount(n, courts int) int {
	count := n % 4
	if courts > 0 && n-count > 4*courts {
		count = n - 4*courts
	}
	return count
}

// selectByes picks count players to sit out: fewest prior byes first, then the
// one whose last bye is oldest (never benched counts as oldest), then lowest ID.
// players must be sorted by ID; both returned slices keep that order.
func selectByes(players []models.Player, ledger ByeLedger, count int) (byes, playing []models.Player) {
	if count <= 0 {
		return nil, players
	}

	order := make([]models.Player, len(players))
	copy(order, players)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := ledger.Get(order[i].ID), ledger.Get(order[j].ID)
		if a.Count != b.Count {
			return a.Count < b.Count
		}
		if a.LastRound != b.LastRound {
			return a.LastRound < b.LastRound
		}
		return order[i].ID < order[j].ID
	})

	benched := make(map[int]bool, count)
	for _, p := range order[:count] {
		benched[p.ID] = true
	}

	playing = make([]models.Player, 0, len(players)-count)
	for _, p := range players {
		if benched[p.ID] {
			byes = append(byes, p)
		} else {
			playing = append(playing, p)
		}
	}
	return byes, playing
}
