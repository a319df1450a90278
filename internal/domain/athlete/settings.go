package athlete

import (
	"database/sql"
	"fmt"
	"time"
)

// Settings controls send behavior for one athlete. Exactly one row per athlete.
type Settings struct {
	AthleteID            int64
	AutoSendEnabled      bool
	AutoSendCount        int          // daily send cap
	PausedUntil          sql.NullTime // no sends before this instant
	DaysBetweenEmails    int          // cooldown before re-contacting the same coach
	MaxFollowups         int
	DaysBetweenFollowups int
	SendHour             int // local hour (0-23) the daily window opens
	TimezoneOffset       int // hours relative to UTC
	UpdatedAt            time.Time
}

// DefaultSettings returns the settings a new athlete starts with.
func DefaultSettings(athleteID int64) *Settings {
	return &Settings{
		AthleteID:            athleteID,
		AutoSendEnabled:      false,
		AutoSendCount:        25,
		DaysBetweenEmails:    7,
		MaxFollowups:         3,
		DaysBetweenFollowups: 3,
		SendHour:             9,
		TimezoneOffset:       0,
	}
}

// Validate rejects settings the scheduler cannot act on safely.
func (s *Settings) Validate() error {
	if s.AutoSendCount < 0 {
		return fmt.Errorf("auto_send_count must be non-negative, got %d", s.AutoSendCount)
	}
	if s.DaysBetweenEmails < 0 {
		return fmt.Errorf("days_between_emails must be non-negative, got %d", s.DaysBetweenEmails)
	}
	if s.MaxFollowups < 0 || s.MaxFollowups > 3 {
		return fmt.Errorf("max_followups must be between 0 and 3, got %d", s.MaxFollowups)
	}
	if s.DaysBetweenFollowups < 1 {
		return fmt.Errorf("days_between_followups must be at least 1, got %d", s.DaysBetweenFollowups)
	}
	if s.SendHour < 0 || s.SendHour > 23 {
		return fmt.Errorf("send_hour must be between 0 and 23, got %d", s.SendHour)
	}
	if s.TimezoneOffset < -12 || s.TimezoneOffset > 14 {
		return fmt.Errorf("timezone_offset must be between -12 and 14, got %d", s.TimezoneOffset)
	}
	return nil
}

// IsPaused reports whether sending is paused at the given instant.
func (s *Settings) IsPaused(now time.Time) bool {
	return s.PausedUntil.Valid && s.PausedUntil.Time.After(now)
}

// InSendWindow reports whether the given instant falls inside the athlete's
// daily sending window. The window opens at SendHour local time and stays
// open for the rest of the working day.
func (s *Settings) InSendWindow(now time.Time) bool {
	local := now.UTC().Add(time.Duration(s.TimezoneOffset) * time.Hour)
	return local.Hour() >= s.SendHour
}

// CoachPreference narrows which coach roles an athlete's school selection
// targets.
type CoachPreference string

const (
	PreferPositionOnly   CoachPreference = "position_only"
	PreferRecruitingOnly CoachPreference = "recruiting_coordinator_only"
	PreferBoth           CoachPreference = "both"
)

// SchoolSelection scopes an athlete's outreach to a school with a coach
// preference. The selection set is the scope boundary for all scheduling
// decisions; an athlete with no selections targets the full directory.
type SchoolSelection struct {
	AthleteID  int64
	SchoolID   int64
	Preference CoachPreference
	CreatedAt  time.Time
}
