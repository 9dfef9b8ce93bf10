package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/pairing"
	"github.com/Dosada05/volley-mixer/realtime"
	"github.com/Dosada05/volley-mixer/repositories"
	"github.com/Dosada05/volley-mixer/storage"
)

// memStore is an in-memory stand-in for the Postgres schema.
type memStore struct {
	mu      sync.Mutex
	players []models.Player
	rounds  []models.Round
	teams   []models.Team
	matches []models.Match
	byes    []models.Bye
	users   []models.User
	nextID  int

	// failMatches makes the next match insert fail, to exercise rollback.
	failMatches error
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

type memState struct {
	players []models.Player
	rounds  []models.Round
	teams   []models.Team
	matches []models.Match
	byes    []models.Bye
}

func (s *memStore) save() memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memState{
		players: append([]models.Player(nil), s.players...),
		rounds:  append([]models.Round(nil), s.rounds...),
		teams:   append([]models.Team(nil), s.teams...),
		matches: append([]models.Match(nil), s.matches...),
		byes:    append([]models.Bye(nil), s.byes...),
	}
}

func (s *memStore) restore(st memState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players, s.rounds, s.teams, s.matches, s.byes = st.players, st.rounds, st.teams, st.matches, st.byes
}

type memTx struct{ *memStore }

func (t memTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	before := t.save()
	if err := fn(nil); err != nil {
		t.restore(before)
		return err
	}
	return nil
}

// --- players ---

type memPlayers struct{ *memStore }

func (r memPlayers) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.id()
	p.CreatedAt = time.Now()
	r.players = append(r.players, *p)
	return nil
}

func (r memPlayers) GetByID(ctx context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.ID == id && !p.Deleted {
			cp := p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r memPlayers) List(ctx context.Context, activeOnly bool) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Player, 0)
	for _, p := range r.players {
		if p.Deleted || (activeOnly && !p.Active) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r memPlayers) ListByIDs(ctx context.Context, ids []int) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]models.Player, 0)
	for _, p := range r.players {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPlayers) update(id int, fn func(p *models.Player)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.players {
		if r.players[i].ID == id && !r.players[i].Deleted {
			fn(&r.players[i])
			return nil
		}
	}
	return repositories.ErrPlayerNotFound
}

func (r memPlayers) Update(ctx context.Context, p *models.Player) error {
	return r.update(p.ID, func(dst *models.Player) {
		dst.Name, dst.Gender, dst.Class = p.Name, p.Gender, p.Class
	})
}

func (r memPlayers) SetActive(ctx context.Context, id int, active bool) error {
	return r.update(id, func(p *models.Player) { p.Active = active })
}

func (r memPlayers) SetAllActive(ctx context.Context, active bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.players {
		if !r.players[i].Deleted {
			r.players[i].Active = active
			n++
		}
	}
	return n, nil
}

func (r memPlayers) SoftDelete(ctx context.Context, id int) error {
	return r.update(id, func(p *models.Player) { p.Deleted, p.Active = true, false })
}

func (r memPlayers) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = nil
	return nil
}

// --- rounds ---

type memRounds struct{ *memStore }

func (r memRounds) Create(ctx context.Context, exec repositories.SQLExecutor, round *models.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rounds {
		if existing.Number == round.Number {
			return repositories.ErrRoundNumberConflict
		}
	}
	round.ID = r.id()
	round.CreatedAt = time.Now()
	r.rounds = append(r.rounds, models.Round{ID: round.ID, Number: round.Number, Seed: round.Seed, CreatedAt: round.CreatedAt})
	return nil
}

func (r memRounds) NextNumber(ctx context.Context, exec repositories.SQLExecutor) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, round := range r.rounds {
		if round.Number > max {
			max = round.Number
		}
	}
	return max + 1, nil
}

func (r memRounds) GetByNumber(ctx context.Context, number int) (*models.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, round := range r.rounds {
		if round.Number == number {
			cp := round
			return &cp, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (r memRounds) GetLatest(ctx context.Context) (*models.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Round
	for i := range r.rounds {
		if latest == nil || r.rounds[i].Number > latest.Number {
			cp := r.rounds[i]
			latest = &cp
		}
	}
	if latest == nil {
		return nil, repositories.ErrRoundNotFound
	}
	return latest, nil
}

func (r memRounds) List(ctx context.Context) ([]models.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.Round{}, r.rounds...)
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r memRounds) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rounds), nil
}

func (r memRounds) DeleteByNumber(ctx context.Context, exec repositories.SQLExecutor, number int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	roundID := 0
	kept := r.rounds[:0]
	for _, round := range r.rounds {
		if round.Number == number {
			roundID = round.ID
			continue
		}
		kept = append(kept, round)
	}
	r.rounds = kept
	if roundID == 0 {
		return repositories.ErrRoundNotFound
	}
	r.teams = filter(r.teams, func(t models.Team) bool { return t.RoundID != roundID })
	r.matches = filter(r.matches, func(m models.Match) bool { return m.RoundID != roundID })
	r.byes = filter(r.byes, func(b models.Bye) bool { return b.RoundID != roundID })
	return nil
}

func (r memRounds) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds, r.teams, r.matches, r.byes = nil, nil, nil, nil
	return nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func inRounds(ids []int) func(roundID int) bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(roundID int) bool { return set[roundID] }
}

// --- teams ---

type memTeams struct{ *memStore }

func (r memTeams) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, teams []*models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range teams {
		t.ID = r.id()
		r.teams = append(r.teams, *t)
	}
	return nil
}

func (r memTeams) ListAll(ctx context.Context) ([]models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Team{}, r.teams...), nil
}

func (r memTeams) ListByRounds(ctx context.Context, ids []int) ([]models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in := inRounds(ids)
	return filter(r.teams, func(t models.Team) bool { return in(t.RoundID) }), nil
}

// --- matches ---

type memMatches struct{ *memStore }

func (r memMatches) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMatches != nil {
		err := r.failMatches
		r.failMatches = nil
		return err
	}
	for _, m := range matches {
		m.ID = r.id()
		r.matches = append(r.matches, *m)
	}
	return nil
}

func (r memMatches) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r memMatches) ListAll(ctx context.Context) ([]models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Match{}, r.matches...), nil
}

func (r memMatches) ListByRounds(ctx context.Context, ids []int) ([]models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in := inRounds(ids)
	out := filter(r.matches, func(m models.Match) bool { return in(m.RoundID) })
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundID != out[j].RoundID {
			return out[i].RoundID < out[j].RoundID
		}
		return out[i].Court < out[j].Court
	})
	return out, nil
}

func (r memMatches) SetWinner(ctx context.Context, id int, winnerTeamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.matches {
		m := &r.matches[i]
		if m.ID != id {
			continue
		}
		if m.WinnerTeamID != nil {
			return repositories.ErrMatchDecided
		}
		if !m.HasTeam(winnerTeamID) {
			return repositories.ErrMatchTeamInvalid
		}
		w := winnerTeamID
		m.WinnerTeamID = &w
		return nil
	}
	return repositories.ErrMatchNotFound
}

// --- byes ---

type memByes struct{ *memStore }

func (r memByes) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, roundID int, playerIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	number := 0
	for _, round := range r.rounds {
		if round.ID == roundID {
			number = round.Number
		}
	}
	for _, id := range playerIDs {
		r.byes = append(r.byes, models.Bye{RoundID: roundID, RoundNumber: number, PlayerID: id})
	}
	return nil
}

func (r memByes) ListAll(ctx context.Context) ([]models.Bye, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Bye{}, r.byes...), nil
}

func (r memByes) ListByRounds(ctx context.Context, ids []int) ([]models.Bye, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in := inRounds(ids)
	return filter(r.byes, func(b models.Bye) bool { return in(b.RoundID) }), nil
}

// --- users ---

type memUsers struct{ *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	u.ID = r.id()
	r.users = append(r.users, *u)
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r memUsers) UpdatePassword(ctx context.Context, id int, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].PasswordHash = hash
			return nil
		}
	}
	return repositories.ErrUserNotFound
}

// --- hub, uploader ---

type recordingHub struct {
	mu       sync.Mutex
	messages []realtime.Message
}

func (h *recordingHub) BroadcastToRoom(roomID string, msg realtime.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg.RoomID = roomID
	h.messages = append(h.messages, msg)
}

func (h *recordingHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.messages))
	for i, m := range h.messages {
		out[i] = m.Type
	}
	return out
}

type memUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	fail    bool
}

func newMemUploader() *memUploader {
	return &memUploader{objects: make(map[string][]byte)}
}

func (u *memUploader) Upload(ctx context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	if u.fail {
		return nil, errors.New("bucket unavailable")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *memUploader) GetPublicURL(key string) string {
	return storage.PublicURL("https://cdn.example.com", key)
}

// --- wiring ---

type fixture struct {
	store       *memStore
	hub         *recordingHub
	uploader    *memUploader
	roster      RosterService
	rounds      RoundService
	matches     MatchService
	leaderboard LeaderboardService
	dashboard   DashboardService
}

func newFixture(generator pairing.RoundGenerator, courts int) *fixture {
	store := newMemStore()
	hub := &recordingHub{}
	uploader := newMemUploader()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	players := memPlayers{store}
	rounds := memRounds{store}
	teams := memTeams{store}
	matches := memMatches{store}
	byes := memByes{store}
	tx := memTx{store}

	roundSvc := NewRoundService(tx, players, rounds, teams, matches, byes, generator, courts, hub, nil, logger)
	return &fixture{
		store:       store,
		hub:         hub,
		uploader:    uploader,
		roster:      NewRosterService(tx, players, rounds, hub, logger),
		rounds:      roundSvc,
		matches:     NewMatchService(matches, hub, nil, logger),
		leaderboard: NewLeaderboardService(players, teams, matches, byes, roundSvc, uploader, logger),
		dashboard:   NewDashboardService(players, rounds, teams, matches, byes),
	}
}

// seedRoster adds n players, alternating genders and cycling classes.
func (f *fixture) seedRoster(t *testing.T, n int) []models.Player {
	t.Helper()
	classes := []string{"low", "medium", "high"}
	out := make([]models.Player, 0, n)
	for i := 0; i < n; i++ {
		gender := "F"
		if i%2 == 1 {
			gender = "M"
		}
		p, err := f.roster.AddPlayer(context.Background(), PlayerInput{
			Name:   fmt.Sprintf("Player %02d", i+1),
			Gender: gender,
			Class:  classes[i%len(classes)],
		})
		require.NoError(t, err)
		out = append(out, *p)
	}
	return out
}

func seedPtr(v int64) *int64 { return &v }
