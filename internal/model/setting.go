package model

import "time"

// Well-known setting keys read by the policy engine and check-in paths.
// Values live in the settings table and are served through the settings
// cache; each consumer supplies its own default for missing keys.
const (
	SettingOpeningHour            = "OPENING_HOUR"             // first bookable hour (default 9)
	SettingClosingHour            = "CLOSING_HOUR"             // exclusive last bookable hour (default 21)
	SettingDailyLimitHours        = "DAILY_LIMIT_HOURS"        // per-user daily quota in hours (default 3)
	SettingMaxSlotsPerReservation = "MAX_SLOTS_PER_RESERVATION" // cap on a single booking (default 6)
	SettingCheckinGraceMinutes    = "CHECKIN_GRACE_MINUTES"    // minutes after start before no-show (default 15)
)

// Setting is one policy parameter row. The value column is a string and is
// interpreted by the reader (usually as an integer).
//
// Fields:
//  ID          – primary key identifier.
//  KeyName     – unique setting key.
//  Value       – raw string value.
//  Description – human-readable explanation of the key.
//  UpdatedAt   – timestamp of last modification.
type Setting struct {
	ID          int64     `json:"id"`          // settings.id
	KeyName     string    `json:"key_name"`    // settings.key_name
	Value       string    `json:"value"`       // settings.value
	Description string    `json:"description"` // settings.description
	UpdatedAt   time.Time `json:"updated_at"`  // settings.updated_at
}
