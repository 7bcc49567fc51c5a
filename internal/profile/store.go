package profile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardroom/blackjack/internal/fileutil"
	"github.com/cardroom/blackjack/internal/game"
)

// csvFields is the column layout of the store file. Order matters:
// rows are written and parsed positionally.
var csvFields = []string{
	"user_id", "nickname", "chips", "level", "exp",
	"wins", "losses", "draws", "blackjacks", "last_checkin",
}

const checkinDateFormat = "2006-01-02"

// Store is a CSV-backed profile registry. All profiles are held in
// memory; every mutation rewrites the whole file atomically.
type Store struct {
	mu       sync.RWMutex
	path     string
	clock    quartz.Clock
	logger   *log.Logger
	profiles map[string]*Profile
}

// StoreOption configures a store.
type StoreOption func(*Store)

// WithClock replaces the wall clock, letting tests control the
// check-in day boundary.
func WithClock(clock quartz.Clock) StoreOption {
	return func(s *Store) { s.clock = clock }
}

// NewStore opens the profile store at path, loading any existing file.
func NewStore(path string, logger *log.Logger, opts ...StoreOption) (*Store, error) {
	s := &Store{
		path:     path,
		clock:    quartz.NewReal(),
		logger:   logger.WithPrefix("profile"),
		profiles: make(map[string]*Profile),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	s.logger.Info("Profile store opened", "path", path, "profiles", len(s.profiles))
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read profile store: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse profile store: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	// First row is the header.
	for _, row := range rows[1:] {
		p, err := parseRow(row)
		if err != nil {
			return fmt.Errorf("bad profile row: %w", err)
		}
		s.profiles[p.ID] = p
	}
	return nil
}

func parseRow(row []string) (*Profile, error) {
	if len(row) != len(csvFields) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(csvFields), len(row))
	}

	ints := make([]int, 7)
	for i, col := range row[2:9] {
		n, err := strconv.Atoi(col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", csvFields[i+2], err)
		}
		ints[i] = n
	}

	p := &Profile{
		ID:         row[0],
		Nickname:   row[1],
		Chips:      ints[0],
		Level:      ints[1],
		Exp:        ints[2],
		Wins:       ints[3],
		Losses:     ints[4],
		Draws:      ints[5],
		Blackjacks: ints[6],
	}
	if row[9] != "" {
		day, err := time.Parse(checkinDateFormat, row[9])
		if err != nil {
			return nil, fmt.Errorf("column last_checkin: %w", err)
		}
		p.LastCheckin = day
	}
	return p, nil
}

// save rewrites the whole store file. Callers hold the write lock.
func (s *Store) save() error {
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvFields); err != nil {
		return err
	}
	for _, id := range ids {
		p := s.profiles[id]
		checkin := ""
		if !p.LastCheckin.IsZero() {
			checkin = p.LastCheckin.Format(checkinDateFormat)
		}
		row := []string{
			p.ID, p.Nickname,
			strconv.Itoa(p.Chips), strconv.Itoa(p.Level), strconv.Itoa(p.Exp),
			strconv.Itoa(p.Wins), strconv.Itoa(p.Losses), strconv.Itoa(p.Draws),
			strconv.Itoa(p.Blackjacks), checkin,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	if err := fileutil.WriteFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to save profile store: %w", err)
	}
	return nil
}

// Register creates a profile with the starting balance.
func (s *Store) Register(id, nickname string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[id]; exists {
		return Profile{}, fmt.Errorf("%w: %s", ErrAlreadyRegistered, id)
	}

	p := &Profile{
		ID:       id,
		Nickname: nickname,
		Chips:    StartingChips,
		Level:    1,
	}
	s.profiles[id] = p
	if err := s.save(); err != nil {
		delete(s.profiles, id)
		return Profile{}, err
	}

	s.logger.Info("Registered player", "id", id, "nickname", nickname)
	return *p, nil
}

// Get returns a copy of the profile for id.
func (s *Store) Get(id string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *p, nil
}

// GetByNickname returns a copy of the first profile with the nickname.
func (s *Store) GetByNickname(nickname string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.Nickname == nickname {
			return *p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: nickname %s", ErrNotFound, nickname)
}

// Debit removes chips from a balance, typically to stake a bet.
func (s *Store) Debit(id string, amount int) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if amount > p.Chips {
		return Profile{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientChips, p.Chips, amount)
	}
	p.Chips -= amount
	if err := s.save(); err != nil {
		p.Chips += amount
		return Profile{}, err
	}
	return *p, nil
}

// Credit adds chips to a balance, typically a refunded stake.
func (s *Store) Credit(id string, amount int) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p.Chips += amount
	if err := s.save(); err != nil {
		p.Chips -= amount
		return Profile{}, err
	}
	return *p, nil
}

// ApplySettlement credits a player's settled hands and updates lifetime
// counters. Stakes were debited at bet time, so each non-losing hand
// pays back its stake plus the payout delta; losing hands pay nothing.
func (s *Store) ApplySettlement(id string, results []game.SettlementResult) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	before := *p
	for _, r := range results {
		switch r.Outcome {
		case game.OutcomeWin, game.OutcomeBlackjack:
			p.Chips += r.Bet + r.PayoutDelta
			p.Wins++
		case game.OutcomePush:
			p.Chips += r.Bet
			p.Draws++
		case game.OutcomeLose:
			p.Losses++
		}
		if r.Natural {
			p.Blackjacks++
		}
	}

	if err := s.save(); err != nil {
		*p = before
		return Profile{}, err
	}

	s.logger.Debug("Applied settlement", "id", id, "hands", len(results), "chips", p.Chips)
	return *p, nil
}

// CheckinResult reports what a daily check-in granted.
type CheckinResult struct {
	Chips     int
	Exp       int
	LeveledUp bool
	Profile   Profile
}

const (
	checkinBaseReward  = 200
	checkinLevelReward = 50
	checkinExp         = 10
	levelUpBonus       = 300
)

// Checkin grants the once-a-day reward. The day boundary is the
// calendar date of the store's clock, not a 24-hour window.
func (s *Store) Checkin(id string) (CheckinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return CheckinResult{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := s.clock.Now()
	if sameDay(p.LastCheckin, now) {
		return CheckinResult{}, fmt.Errorf("%w: %s", ErrAlreadyCheckedIn, id)
	}

	before := *p
	reward := checkinBaseReward + p.Level*checkinLevelReward
	p.Chips += reward
	leveled := p.gainExp(checkinExp)
	if leveled {
		p.Chips += levelUpBonus
		reward += levelUpBonus
	}
	p.LastCheckin = now

	if err := s.save(); err != nil {
		*p = before
		return CheckinResult{}, err
	}

	s.logger.Info("Player checked in", "id", id, "reward", reward, "level", p.Level)
	return CheckinResult{Chips: reward, Exp: checkinExp, LeveledUp: leveled, Profile: *p}, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Leaderboard kinds.
type LeaderboardKind int

const (
	ByChips LeaderboardKind = iota
	ByWins
	ByBlackjacks
)

// Leaderboard returns up to limit profiles ranked by the given kind.
func (s *Store) Leaderboard(kind LeaderboardKind, limit int) []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		ranked = append(ranked, *p)
	}

	sort.Slice(ranked, func(i, j int) bool {
		switch kind {
		case ByWins:
			if ranked[i].Wins != ranked[j].Wins {
				return ranked[i].Wins > ranked[j].Wins
			}
		case ByBlackjacks:
			if ranked[i].Blackjacks != ranked[j].Blackjacks {
				return ranked[i].Blackjacks > ranked[j].Blackjacks
			}
		default:
			if ranked[i].Chips != ranked[j].Chips {
				return ranked[i].Chips > ranked[j].Chips
			}
		}
		// Stable order for ties.
		return ranked[i].ID < ranked[j].ID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
