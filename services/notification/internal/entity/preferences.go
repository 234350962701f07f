package entity

import (
	"fmt"
	"regexp"
	"time"
)

type DigestFrequency string

const (
	DigestInstant DigestFrequency = "instant"
	DigestHourly  DigestFrequency = "hourly"
	DigestDaily   DigestFrequency = "daily"
	DigestWeekly  DigestFrequency = "weekly"
	DigestNever   DigestFrequency = "never"
)

// Interval returns the flush period for a frequency. The second return is
// false for frequencies that never flush (instant delivers immediately,
// never doesn't deliver at all).
func (f DigestFrequency) Interval() (time.Duration, bool) {
	switch f {
	case DigestHourly:
		return time.Hour, true
	case DigestDaily:
		return 24 * time.Hour, true
	case DigestWeekly:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

func (f DigestFrequency) Valid() bool {
	switch f {
	case DigestInstant, DigestHourly, DigestDaily, DigestWeekly, DigestNever:
		return true
	}
	return false
}

var wallClockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// QuietHours is a user-local window during which non-urgent push delivery is
// suppressed. Start and End are "HH:MM" wall-clock strings in Timezone.
type QuietHours struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"`
}

func (q QuietHours) Validate() error {
	if !q.Enabled {
		return nil
	}
	if !wallClockRe.MatchString(q.StartTime) {
		return fmt.Errorf("%w: quiet hours start time %q is not HH:MM", ErrValidation, q.StartTime)
	}
	if !wallClockRe.MatchString(q.EndTime) {
		return fmt.Errorf("%w: quiet hours end time %q is not HH:MM", ErrValidation, q.EndTime)
	}
	if _, err := time.LoadLocation(q.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrValidation, q.Timezone)
	}
	return nil
}

// ActiveAt reports whether now falls inside the quiet window. The window is
// inclusive of the start minute and exclusive of the end minute; a window
// whose start is later than its end wraps midnight. An unloadable timezone
// fails open (not active) so delivery is never blocked by bad settings.
func (q QuietHours) ActiveAt(now time.Time) bool {
	if !q.Enabled {
		return false
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return false
	}

	local := now.In(loc)
	minutes := local.Hour()*60 + local.Minute()
	start, okStart := parseWallClock(q.StartTime)
	end, okEnd := parseWallClock(q.EndTime)
	if !okStart || !okEnd || start == end {
		return false
	}

	if start < end {
		return minutes >= start && minutes < end
	}
	// Overnight window, e.g. 22:00-07:00
	return minutes >= start || minutes < end
}

func parseWallClock(s string) (int, bool) {
	if !wallClockRe.MatchString(s) {
		return 0, false
	}
	var h, m int
	fmt.Sscanf(s, "%d:%d", &h, &m)
	return h*60 + m, true
}

// NotificationPreferences is one user's delivery policy. It is created
// lazily with defaults on first access and only ever replaced wholesale by a
// validated update.
type NotificationPreferences struct {
	UserID               string          `json:"user_id"`
	CollaborationUpdates bool            `json:"collaboration_updates"`
	Comments             bool            `json:"comments"`
	Mentions             bool            `json:"mentions"`
	AccessRequests       bool            `json:"access_requests"`
	Conflicts            bool            `json:"conflicts"`
	System               bool            `json:"system"`
	DigestFrequency      DigestFrequency `json:"digest_frequency"`
	QuietHours           QuietHours      `json:"quiet_hours"`
}

func DefaultPreferences(userID string) NotificationPreferences {
	return NotificationPreferences{
		UserID:               userID,
		CollaborationUpdates: true,
		Comments:             true,
		Mentions:             true,
		AccessRequests:       true,
		Conflicts:            true,
		System:               true,
		DigestFrequency:      DigestInstant,
		QuietHours: QuietHours{
			Enabled:   false,
			StartTime: "22:00",
			EndTime:   "08:00",
			Timezone:  "UTC",
		},
	}
}

// CategoryEnabled maps a notification category to its toggle. Unknown
// categories default to enabled so new event kinds are never silently lost.
func (p NotificationPreferences) CategoryEnabled(category string) bool {
	switch category {
	case CategoryCollaboration:
		return p.CollaborationUpdates
	case CategoryComments:
		return p.Comments
	case CategoryMentions:
		return p.Mentions
	case CategoryAccess:
		return p.AccessRequests
	case CategoryConflicts:
		return p.Conflicts
	case CategorySystem:
		return p.System
	}
	return true
}

// PreferencesPatch is a partial update. Nil fields keep the stored value;
// QuietHours replaces the whole block when present.
type PreferencesPatch struct {
	CollaborationUpdates *bool            `json:"collaboration_updates,omitempty"`
	Comments             *bool            `json:"comments,omitempty"`
	Mentions             *bool            `json:"mentions,omitempty"`
	AccessRequests       *bool            `json:"access_requests,omitempty"`
	Conflicts            *bool            `json:"conflicts,omitempty"`
	System               *bool            `json:"system,omitempty"`
	DigestFrequency      *DigestFrequency `json:"digest_frequency,omitempty"`
	QuietHours           *QuietHours      `json:"quiet_hours,omitempty"`
}

// Validate checks the patch in full before anything is applied, so an
// update is all-or-nothing.
func (p PreferencesPatch) Validate() error {
	if p.DigestFrequency != nil && !p.DigestFrequency.Valid() {
		return fmt.Errorf("%w: unknown digest frequency %q", ErrValidation, *p.DigestFrequency)
	}
	if p.QuietHours != nil {
		if err := p.QuietHours.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the patch into prefs and returns the result. The receiver's
// copy semantics keep the stored record untouched on validation failure.
func (p PreferencesPatch) Apply(prefs NotificationPreferences) NotificationPreferences {
	if p.CollaborationUpdates != nil {
		prefs.CollaborationUpdates = *p.CollaborationUpdates
	}
	if p.Comments != nil {
		prefs.Comments = *p.Comments
	}
	if p.Mentions != nil {
		prefs.Mentions = *p.Mentions
	}
	if p.AccessRequests != nil {
		prefs.AccessRequests = *p.AccessRequests
	}
	if p.Conflicts != nil {
		prefs.Conflicts = *p.Conflicts
	}
	if p.System != nil {
		prefs.System = *p.System
	}
	if p.DigestFrequency != nil {
		prefs.DigestFrequency = *p.DigestFrequency
	}
	if p.QuietHours != nil {
		prefs.QuietHours = *p.QuietHours
	}
	return prefs
}
