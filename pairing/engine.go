package pairing

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/Dosada05/volley-mixer/models"
)

const (
	// jitterSpan bounds the seeded tie-break added to every candidate edge.
	jitterSpan int64 = 1000
	// maxTeamClassSquare is (3+3)^2, the largest class term of a team.
	maxTeamClassSquare int64 = 36
	// maxStrengthGap is the largest difference between two team class sums (6-2).
	maxStrengthGap int64 = 4
)

// Engine draws rounds with exact minimum-cost matchings. It keeps no state
// between calls, so one value can serve concurrent requests.
type Engine struct{}

func NewEngine() RoundGenerator {
	return &Engine{}
}

func (e *Engine) GetName() string {
	return "BlossomMixer"
}

// Generate benches the bye players, pairs the rest into teams and puts the
// teams onto courts. The same request always yields the same draw.
func (e *Engine) Generate(req Request) (*Draw, error) {
	players, err := validateRoster(req.Players)
	if err != nil {
		return nil, err
	}
	if len(players) < 4 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientPlayers, len(players))
	}

	rng := rand.New(rand.NewPCG(uint64(req.Seed), uint64(req.Seed)^0x9e3779b97f4a7c15))

	byes, playing := selectByes(players, req.Byes, byeCount(len(players), req.Courts))
	teams := formTeams(playing, req.History.Partners, rng)
	if len(teams)%2 != 0 {
		return nil, fmt.Errorf("pairing: odd team count %d", len(teams))
	}
	courts := assignCourts(teams, req.History.Opponents, rng)

	draw := &Draw{
		Seed:   req.Seed,
		Byes:   byes,
		Teams:  make([]DrawTeam, 0, len(teams)),
		Courts: make([]DrawCourt, 0, len(courts)),
	}
	if draw.Byes == nil {
		draw.Byes = []models.Player{}
	}

	for i, c := range courts {
		home, away := teams[c[0]], teams[c[1]]
		slot := len(draw.Teams)
		draw.Teams = append(draw.Teams,
			DrawTeam{Slot: slot, Player1: home[0], Player2: home[1]},
			DrawTeam{Slot: slot + 1, Player1: away[0], Player2: away[1]},
		)
		draw.Courts = append(draw.Courts, DrawCourt{Court: i + 1, Team1: slot, Team2: slot + 1})

		draw.PartnerCost += req.History.Partners.Get(home[0].ID, home[1].ID)
		draw.PartnerCost += req.History.Partners.Get(away[0].ID, away[1].ID)
		draw.OppositionCost += oppositionCost(home, away, req.History.Opponents)
		if home[0].Gender == home[1].Gender {
			draw.SameGenderTeams++
		}
		if away[0].Gender == away[1].Gender {
			draw.SameGenderTeams++
		}
	}
	return draw, nil
}

func validateRoster(in []models.Player) ([]models.Player, error) {
	seen := make(map[int]bool, len(in))
	for _, p := range in {
		switch {
		case p.ID <= 0:
			return nil, fmt.Errorf("%w: player %q has non-positive id %d", ErrInvalidRoster, p.Name, p.ID)
		case seen[p.ID]:
			return nil, fmt.Errorf("%w: duplicate player id %d", ErrInvalidRoster, p.ID)
		case !p.Gender.Valid():
			return nil, fmt.Errorf("%w: player %d has unknown gender %q", ErrInvalidRoster, p.ID, p.Gender)
		case !p.Class.Valid():
			return nil, fmt.Errorf("%w: player %d has unknown class %q", ErrInvalidRoster, p.ID, p.Class)
		case !p.Active || p.Deleted:
			return nil, fmt.Errorf("%w: player %d is not active", ErrInvalidRoster, p.ID)
		}
		seen[p.ID] = true
	}

	out := make([]models.Player, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// formTeams pairs players (sorted by ID) minimising, in strict priority,
// repeated partnerships, same-gender teams, the class-sum spread, then jitter.
// Each returned team has the lower ID first.
func formTeams(players []models.Player, partners PairCounts, rng *rand.Rand) [][2]models.Player {
	m := int64(len(players) / 2)
	classUnit := m * jitterSpan
	genderUnit := classUnit * (m*maxTeamClassSquare + 1)
	repeatUnit := genderUnit * (m + 1)

	pairs := minCostPerfectMatching(len(players), func(i, j int) int64 {
		a, b := players[i], players[j]
		cost := int64(partners.Get(a.ID, b.ID)) * repeatUnit
		if a.Gender == b.Gender {
			cost += genderUnit
		}
		sum := int64(a.Class.Level() + b.Class.Level())
		cost += sum * sum * classUnit
		return cost + rng.Int64N(jitterSpan)
	})

	teams := make([][2]models.Player, 0, len(pairs))
	for _, p := range pairs {
		teams = append(teams, [2]models.Player{players[p[0]], players[p[1]]})
	}
	return teams
}

// assignCourts pairs teams into matches minimising repeated oppositions, then
// the class-strength gap, then jitter. Matches are ordered by their lowest
// player ID and, inside a match, the team with the lower first ID comes first.
func assignCourts(teams [][2]models.Player, opponents PairCounts, rng *rand.Rand) [][2]int {
	k := int64(len(teams) / 2)
	gapUnit := k * jitterSpan
	repeatUnit := gapUnit * (k*maxStrengthGap + 1)

	pairs := minCostPerfectMatching(len(teams), func(i, j int) int64 {
		cost := int64(oppositionCost(teams[i], teams[j], opponents)) * repeatUnit
		gap := int64(strength(teams[i]) - strength(teams[j]))
		if gap < 0 {
			gap = -gap
		}
		cost += gap * gapUnit
		return cost + rng.Int64N(jitterSpan)
	})

	for i, p := range pairs {
		if teams[p[1]][0].ID < teams[p[0]][0].ID {
			pairs[i] = [2]int{p[1], p[0]}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return teams[pairs[i][0]][0].ID < teams[pairs[j][0]][0].ID
	})
	return pairs
}

func strength(t [2]models.Player) int {
	return t[0].Class.Level() + t[1].Class.Level()
}

func oppositionCost(a, b [2]models.Player, opponents PairCounts) int {
	total := 0
	for _, p := range a {
		for _, q := range b {
			total += opponents.Get(p.ID, q.ID)
		}
	}
	return total
}
