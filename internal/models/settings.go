package models

// Settings represents application-wide settings
type Settings struct {
	ProfileID            string `json:"profile_id"`            // id of the profile document answers sync to
	Timezone             string `json:"timezone"`              // IANA timezone name or "Local"
	NotificationsEnabled bool   `json:"notifications_enabled"` // whether due reminders are delivered
	ReminderTitle        string `json:"reminder_title"`        // title used for medication notifications
}
