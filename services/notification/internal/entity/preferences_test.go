package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuietHours_ActiveAt_Disabled(t *testing.T) {
	q := QuietHours{Enabled: false, StartTime: "00:00", EndTime: "23:59", Timezone: "UTC"}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, q.ActiveAt(now))
}

func TestQuietHours_ActiveAt_SameDayWindow(t *testing.T) {
	q := QuietHours{Enabled: true, StartTime: "09:00", EndTime: "17:00", Timezone: "UTC"}

	assert.True(t, q.ActiveAt(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, q.ActiveAt(time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)))
	assert.False(t, q.ActiveAt(time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC)))
	assert.False(t, q.ActiveAt(time.Date(2024, 6, 1, 8, 59, 0, 0, time.UTC)))
}

func TestQuietHours_ActiveAt_OvernightWindow(t *testing.T) {
	q := QuietHours{Enabled: true, StartTime: "22:00", EndTime: "07:00", Timezone: "UTC"}

	assert.True(t, q.ActiveAt(time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)))
	assert.True(t, q.ActiveAt(time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)))
	assert.False(t, q.ActiveAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)))
	assert.False(t, q.ActiveAt(time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)))
}

func TestQuietHours_ActiveAt_Timezone(t *testing.T) {
	q := QuietHours{Enabled: true, StartTime: "22:00", EndTime: "07:00", Timezone: "America/New_York"}

	// 03:00 UTC is 23:00 in New York (EDT) — inside the window
	assert.True(t, q.ActiveAt(time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)))
	// 16:00 UTC is 12:00 in New York — outside
	assert.False(t, q.ActiveAt(time.Date(2024, 6, 1, 16, 0, 0, 0, time.UTC)))
}

func TestQuietHours_ActiveAt_BadTimezoneFailsOpen(t *testing.T) {
	q := QuietHours{Enabled: true, StartTime: "00:00", EndTime: "23:59", Timezone: "Not/AZone"}
	assert.False(t, q.ActiveAt(time.Now()))
}

func TestQuietHours_Validate(t *testing.T) {
	valid := QuietHours{Enabled: true, StartTime: "22:00", EndTime: "07:00", Timezone: "UTC"}
	assert.NoError(t, valid.Validate())

	badClock := QuietHours{Enabled: true, StartTime: "25:00", EndTime: "07:00", Timezone: "UTC"}
	assert.ErrorIs(t, badClock.Validate(), ErrValidation)

	badZone := QuietHours{Enabled: true, StartTime: "22:00", EndTime: "07:00", Timezone: "Not/AZone"}
	assert.ErrorIs(t, badZone.Validate(), ErrValidation)

	// Disabled windows are not validated
	disabled := QuietHours{Enabled: false, StartTime: "bogus"}
	assert.NoError(t, disabled.Validate())
}

func TestDigestFrequency_Interval(t *testing.T) {
	d, ok := DigestHourly.Interval()
	assert.True(t, ok)
	assert.Equal(t, time.Hour, d)

	d, ok = DigestDaily.Interval()
	assert.True(t, ok)
	assert.Equal(t, 24*time.Hour, d)

	d, ok = DigestWeekly.Interval()
	assert.True(t, ok)
	assert.Equal(t, 7*24*time.Hour, d)

	_, ok = DigestInstant.Interval()
	assert.False(t, ok)

	_, ok = DigestNever.Interval()
	assert.False(t, ok)
}

func TestPreferencesPatch_Apply(t *testing.T) {
	prefs := DefaultPreferences("user-1")

	off := false
	freq := DigestDaily
	patch := PreferencesPatch{
		Comments:        &off,
		DigestFrequency: &freq,
	}

	assert.NoError(t, patch.Validate())
	merged := patch.Apply(prefs)

	assert.False(t, merged.Comments)
	assert.Equal(t, DigestDaily, merged.DigestFrequency)
	// Untouched fields keep their values
	assert.True(t, merged.Mentions)
	assert.True(t, merged.CollaborationUpdates)
	// Original is unchanged
	assert.True(t, prefs.Comments)
}

func TestPreferencesPatch_Validate_BadFrequency(t *testing.T) {
	freq := DigestFrequency("fortnightly")
	patch := PreferencesPatch{DigestFrequency: &freq}
	assert.ErrorIs(t, patch.Validate(), ErrValidation)
}

func TestCategoryEnabled_UnknownCategoryDefaultsOn(t *testing.T) {
	prefs := DefaultPreferences("user-1")
	prefs.Comments = false

	assert.False(t, prefs.CategoryEnabled(CategoryComments))
	assert.True(t, prefs.CategoryEnabled("something_new"))
}
