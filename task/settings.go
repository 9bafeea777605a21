package task

// Setting keys as persisted in the settings table.
const (
	SettingTheme                  = "theme"
	SettingNotificationsEnabled   = "notificationsEnabled"
	SettingDefaultReminderMinutes = "defaultReminderMinutes"
	SettingTimelineDensity        = "timelineDensity"
	SettingHasSeenOnboarding      = "hasSeenOnboarding"
)

// Settings is the typed view over the settings table.
type Settings struct {
	Theme                  string  `json:"theme"`
	NotificationsEnabled   bool    `json:"notificationsEnabled"`
	DefaultReminderMinutes int     `json:"defaultReminderMinutes"`
	TimelineDensity        float64 `json:"timelineDensity"`
	HasSeenOnboarding      bool    `json:"hasSeenOnboarding"`
}

// DefaultSettings returns the values a fresh profile starts with.
func DefaultSettings() Settings {
	return Settings{
		Theme:                  "light",
		NotificationsEnabled:   true,
		DefaultReminderMinutes: 15,
		TimelineDensity:        1,
	}
}
