package pairing

import "github.com/Dosada05/volley-mixer/models"

// Pair is an unordered pair of player IDs, stored with A < B.
type Pair struct {
	A int
	B int
}

func MakePair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// PairCounts maps an unordered player pair to how often it was observed.
// Pairs never observed read as 0.
type PairCounts map[Pair]int

func (c PairCounts) Get(a, b int) int {
	if c == nil {
		return 0
	}
	return c[MakePair(a, b)]
}

func (c PairCounts) add(a, b int) {
	c[MakePair(a, b)]++
}

// History holds how many prior teams and matches each pair of players shared.
type History struct {
	Partners  PairCounts
	Opponents PairCounts
}

// Aggregate counts partnerships and oppositions over all stored teams and matches.
// Matches pointing at teams that are not in teams are ignored.
func Aggregate(teams []models.Team, matches []models.Match) History {
	h := History{
		Partners:  make(PairCounts),
		Opponents: make(PairCounts),
	}

	byID := make(map[int]models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
		if t.Player1ID == t.Player2ID {
			continue
		}
		h.Partners.add(t.Player1ID, t.Player2ID)
	}

	for _, m := range matches {
		t1, ok1 := byID[m.Team1ID]
		t2, ok2 := byID[m.Team2ID]
		if !ok1 || !ok2 || m.Team1ID == m.Team2ID {
			continue
		}
		for _, p := range [2]int{t1.Player1ID, t1.Player2ID} {
			for _, q := range [2]int{t2.Player1ID, t2.Player2ID} {
				if p != q {
					h.Opponents.add(p, q)
				}
			}
		}
	}
	return h
}

// ByeStat is how often a player sat out and the last round number they sat out (0 if never).
type ByeStat struct {
	Count     int
	LastRound int
}

type ByeLedger map[int]ByeStat

func (l ByeLedger) Get(playerID int) ByeStat {
	if l == nil {
		return ByeStat{}
	}
	return l[playerID]
}

func AggregateByes(byes []models.Bye) ByeLedger {
	ledger := make(ByeLedger)
	for _, b := range byes {
		st := ledger[b.PlayerID]
		st.Count++
		if b.RoundNumber > st.LastRound {
			st.LastRound = b.RoundNumber
		}
		ledger[b.PlayerID] = st
	}
	return ledger
}
