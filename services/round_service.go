package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/volley-mixer/metrics"
	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/pairing"
	"github.com/Dosada05/volley-mixer/realtime"
	"github.com/Dosada05/volley-mixer/repositories"
)

type TeamView struct {
	ID      int           `json:"id"`
	Player1 models.Player `json:"player1"`
	Player2 models.Player `json:"player2"`
}

type CourtView struct {
	MatchID      int      `json:"match_id"`
	Court        int      `json:"court"`
	Team1        TeamView `json:"team1"`
	Team2        TeamView `json:"team2"`
	WinnerTeamID *int     `json:"winner_team_id,omitempty"`
}

// RoundView is a stored round with players resolved, as shown on the courts board.
type RoundView struct {
	ID         int             `json:"id"`
	Number     int             `json:"number"`
	Seed       int64           `json:"seed"`
	CreatedAt  time.Time       `json:"created_at"`
	Complete   bool            `json:"complete"`
	HasResults bool            `json:"has_results"`
	Courts     []CourtView     `json:"courts"`
	Byes       []models.Player `json:"byes"`
}

type RoundService interface {
	// Preview draws the next round without storing it. A nil seed picks a fresh one.
	Preview(ctx context.Context, seed *int64) (*pairing.Draw, error)
	// Generate draws the next round and stores it atomically.
	Generate(ctx context.Context, seed *int64) (*RoundView, error)
	Current(ctx context.Context) (*RoundView, error)
	GetByNumber(ctx context.Context, number int) (*RoundView, error)
	List(ctx context.Context) ([]RoundView, error)
	// DeleteLatest undoes the most recent round; number must match it.
	DeleteLatest(ctx context.Context, number int) error
}

type roundService struct {
	tx        repositories.Transactor
	repos     eventRepos
	roundRepo repositories.RoundRepository
	generator pairing.RoundGenerator
	numCourts int
	hub       realtime.Broadcaster
	metrics   *metrics.Recorder
	logger    *slog.Logger
	newSeed   func() int64

	// mu serialises generation so two draws never read the same history.
	mu sync.Mutex
}

func NewRoundService(
	tx repositories.Transactor,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	byeRepo repositories.ByeRepository,
	generator pairing.RoundGenerator,
	numCourts int,
	hub realtime.Broadcaster,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		tx: tx,
		repos: eventRepos{
			players: playerRepo,
			teams:   teamRepo,
			matches: matchRepo,
			byes:    byeRepo,
		},
		roundRepo: roundRepo,
		generator: generator,
		numCourts: numCourts,
		hub:       hub,
		metrics:   recorder,
		logger:    loggerOrDefault(logger),
		newSeed:   func() int64 { return time.Now().UnixNano() },
	}
}

func (s *roundService) draw(ctx context.Context, seed *int64, mode string) (*pairing.Draw, error) {
	snap, err := s.repos.load(ctx, true)
	if err != nil {
		return nil, err
	}

	req := pairing.Request{
		Players: snap.players,
		History: pairing.Aggregate(snap.teams, snap.matches),
		Byes:    pairing.AggregateByes(snap.byes),
		Seed:    s.newSeed(),
		Courts:  s.numCourts,
	}
	if seed != nil {
		req.Seed = *seed
	}

	start := time.Now()
	d, err := s.generator.Generate(req)
	if err != nil {
		reason := "internal"
		switch {
		case errors.Is(err, pairing.ErrInsufficientPlayers):
			reason = "insufficient_players"
		case errors.Is(err, pairing.ErrInvalidRoster):
			reason = "invalid_roster"
		}
		s.metrics.DrawFailed(reason)
		return nil, err
	}
	s.metrics.ObserveDraw(mode, d, time.Since(start))

	s.logger.DebugContext(ctx, "round drawn",
		slog.String("generator", s.generator.GetName()),
		slog.String("mode", mode),
		slog.Int64("seed", d.Seed),
		slog.Int("players", len(snap.players)),
		slog.Int("courts", len(d.Courts)),
		slog.Int("partner_cost", d.PartnerCost),
		slog.Int("opposition_cost", d.OppositionCost),
	)
	return d, nil
}

func (s *roundService) Preview(ctx context.Context, seed *int64) (*pairing.Draw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draw(ctx, seed, "preview")
}

func (s *roundService) Generate(ctx context.Context, seed *int64) (*RoundView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.draw(ctx, seed, "commit")
	if err != nil {
		return nil, err
	}

	round := &models.Round{Seed: d.Seed}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		number, err := s.roundRepo.NextNumber(ctx, exec)
		if err != nil {
			return err
		}
		round.Number = number
		if err := s.roundRepo.Create(ctx, exec, round); err != nil {
			return err
		}

		// Slots in the draw map onto store IDs in insertion order.
		teams := make([]*models.Team, len(d.Teams))
		for i, t := range d.Teams {
			teams[i] = &models.Team{RoundID: round.ID, Player1ID: t.Player1.ID, Player2ID: t.Player2.ID}
		}
		if err := s.repos.teams.CreateBatch(ctx, exec, teams); err != nil {
			return err
		}

		matches := make([]*models.Match, len(d.Courts))
		for i, c := range d.Courts {
			matches[i] = &models.Match{
				RoundID: round.ID,
				Court:   c.Court,
				Team1ID: teams[c.Team1].ID,
				Team2ID: teams[c.Team2].ID,
			}
		}
		if err := s.repos.matches.CreateBatch(ctx, exec, matches); err != nil {
			return err
		}

		byeIDs := make([]int, len(d.Byes))
		for i, p := range d.Byes {
			byeIDs[i] = p.ID
		}
		if err := s.repos.byes.CreateBatch(ctx, exec, round.ID, byeIDs); err != nil {
			return err
		}

		for _, t := range teams {
			round.Teams = append(round.Teams, *t)
		}
		for _, m := range matches {
			round.Matches = append(round.Matches, *m)
		}
		for _, id := range byeIDs {
			round.Byes = append(round.Byes, models.Bye{RoundID: round.ID, RoundNumber: round.Number, PlayerID: id})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNumberConflict) {
			return nil, ErrRoundConflict
		}
		return nil, fmt.Errorf("failed to store round: %w", err)
	}

	players := make(map[int]models.Player)
	for _, t := range d.Teams {
		players[t.Player1.ID] = t.Player1
		players[t.Player2.ID] = t.Player2
	}
	for _, p := range d.Byes {
		players[p.ID] = p
	}
	view := buildRoundView(*round, round.Teams, round.Matches, round.Byes, players)

	s.logger.InfoContext(ctx, "round generated",
		slog.Int("round", round.Number),
		slog.Int64("seed", round.Seed),
		slog.Int("courts", len(view.Courts)),
		slog.Int("byes", len(view.Byes)),
		slog.Int("partner_repeats", d.PartnerCost),
		slog.Int("opposition_repeats", d.OppositionCost),
	)
	broadcast(s.hub, realtime.MessageRoundGenerated, view)
	return &view, nil
}

func (s *roundService) Current(ctx context.Context) (*RoundView, error) {
	round, err := s.roundRepo.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrNoRounds
		}
		return nil, err
	}
	views, err := s.assemble(ctx, []models.Round{*round})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *roundService) GetByNumber(ctx context.Context, number int) (*RoundView, error) {
	round, err := s.roundRepo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	views, err := s.assemble(ctx, []models.Round{*round})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *roundService) List(ctx context.Context) ([]RoundView, error) {
	rounds, err := s.roundRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, rounds)
}

func (s *roundService) DeleteLatest(ctx context.Context, number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.roundRepo.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return err
	}
	if latest.Number != number {
		return fmt.Errorf("%w: latest is %d", ErrOnlyLatestRound, latest.Number)
	}
	if err := s.roundRepo.DeleteByNumber(ctx, nil, number); err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return err
	}

	s.logger.WarnContext(ctx, "round deleted", slog.Int("round", number))
	broadcast(s.hub, realtime.MessageRoundDeleted, map[string]int{"number": number})
	return nil
}

// assemble loads teams, matches, byes and players for rounds and builds views.
func (s *roundService) assemble(ctx context.Context, rounds []models.Round) ([]RoundView, error) {
	if len(rounds) == 0 {
		return []RoundView{}, nil
	}
	ids := make([]int, len(rounds))
	for i, r := range rounds {
		ids[i] = r.ID
	}

	var (
		teams   []models.Team
		matches []models.Match
		byes    []models.Bye
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.repos.teams.ListByRounds(gCtx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.repos.matches.ListByRounds(gCtx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		byes, err = s.repos.byes.ListByRounds(gCtx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load round details: %w", err)
	}

	seen := make(map[int]bool)
	var playerIDs []int
	addID := func(id int) {
		if !seen[id] {
			seen[id] = true
			playerIDs = append(playerIDs, id)
		}
	}
	for _, t := range teams {
		addID(t.Player1ID)
		addID(t.Player2ID)
	}
	for _, b := range byes {
		addID(b.PlayerID)
	}
	playerList, err := s.repos.players.ListByIDs(ctx, playerIDs)
	if err != nil {
		return nil, err
	}
	players := make(map[int]models.Player, len(playerList))
	for _, p := range playerList {
		players[p.ID] = p
	}

	teamsByRound := make(map[int][]models.Team)
	for _, t := range teams {
		teamsByRound[t.RoundID] = append(teamsByRound[t.RoundID], t)
	}
	matchesByRound := make(map[int][]models.Match)
	for _, m := range matches {
		matchesByRound[m.RoundID] = append(matchesByRound[m.RoundID], m)
	}
	byesByRound := make(map[int][]models.Bye)
	for _, b := range byes {
		byesByRound[b.RoundID] = append(byesByRound[b.RoundID], b)
	}

	views := make([]RoundView, len(rounds))
	for i, r := range rounds {
		views[i] = buildRoundView(r, teamsByRound[r.ID], matchesByRound[r.ID], byesByRound[r.ID], players)
	}
	return views, nil
}

func buildRoundView(round models.Round, teams []models.Team, matches []models.Match, byes []models.Bye, players map[int]models.Player) RoundView {
	round.Matches = matches
	view := RoundView{
		ID:         round.ID,
		Number:     round.Number,
		Seed:       round.Seed,
		CreatedAt:  round.CreatedAt,
		Complete:   round.Complete(),
		HasResults: round.HasResults(),
		Courts:     make([]CourtView, 0, len(matches)),
		Byes:       make([]models.Player, 0, len(byes)),
	}

	player := func(id int) models.Player {
		if p, ok := players[id]; ok {
			return p
		}
		return models.Player{ID: id, Name: fmt.Sprintf("Player %d", id)}
	}
	teamByID := make(map[int]TeamView, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = TeamView{ID: t.ID, Player1: player(t.Player1ID), Player2: player(t.Player2ID)}
	}

	for _, m := range matches {
		view.Courts = append(view.Courts, CourtView{
			MatchID:      m.ID,
			Court:        m.Court,
			Team1:        teamByID[m.Team1ID],
			Team2:        teamByID[m.Team2ID],
			WinnerTeamID: m.WinnerTeamID,
		})
	}
	for _, b := range byes {
		view.Byes = append(view.Byes, player(b.PlayerID))
	}
	return view
}
