// Package profile manages persistent player records: chip balances,
// levels, lifetime results and daily check-ins. Storage is a single CSV
// file rewritten in full on every save.
package profile

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no profile exists for the given ID.
	ErrNotFound = errors.New("profile: not found")

	// ErrAlreadyRegistered indicates a registration for an existing ID.
	ErrAlreadyRegistered = errors.New("profile: already registered")

	// ErrAlreadyCheckedIn indicates a second check-in on the same day.
	ErrAlreadyCheckedIn = errors.New("profile: already checked in today")

	// ErrInsufficientChips indicates a debit larger than the balance.
	ErrInsufficientChips = errors.New("profile: insufficient chips")
)

// StartingChips is the balance granted on registration.
const StartingChips = 1000

// Profile is one player's persistent record.
type Profile struct {
	ID          string
	Nickname    string
	Chips       int
	Level       int
	Exp         int
	Wins        int
	Losses      int
	Draws       int
	Blackjacks  int
	LastCheckin time.Time
}

// ExpToNextLevel returns the total experience required to leave the
// profile's current level.
func (p *Profile) ExpToNextLevel() int {
	return expNeeded(p.Level)
}

// WinRate returns the percentage of games won, 0 with no games played.
func (p *Profile) WinRate() float64 {
	total := p.Wins + p.Losses + p.Draws
	if total == 0 {
		return 0
	}
	return float64(p.Wins) / float64(total) * 100
}

// expNeeded is the experience threshold for advancing past level.
// Experience carries over on level-up rather than resetting.
func expNeeded(level int) int {
	return int(float64(level) * 100 * (1 + float64(level-1)*0.5))
}

// gainExp adds experience and applies any level-up, returning true when
// the profile advanced a level.
func (p *Profile) gainExp(amount int) bool {
	p.Exp += amount
	if p.Exp >= expNeeded(p.Level) {
		p.Level++
		return true
	}
	return false
}
