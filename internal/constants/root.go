package constants

import "time"

const (
	AppName            = "carelog"
	DefaultKeyringUser = "remote-connection"
	DefaultConfigPath  = "~/.config/carelog/carelog.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the canonical 24-hour time format (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "carelog-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyTickSpec         = "* * * * *"
	NotifyRequestTimeout   = 5 * time.Second
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "carelog-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.carelog"
	ReminderTitle          = "Medication reminder"

	// Redis
	RedisKeyPrefix   = "carelog:"
	RedisDialTimeout = 5 * time.Second
	RedisMaxTxRetry  = 3

	// Export
	ExportEventDuration = 15 * time.Minute
	ICSProductID        = "-//julianstephens//carelog//EN"
)

// Document collections
const (
	CollectionSettings      = "settings"
	CollectionProfiles      = "profiles"
	CollectionDrafts        = "drafts"
	CollectionMedicines     = "medicines"
	CollectionContacts      = "contacts"
	CollectionDoctors       = "doctors"
	CollectionInsurance     = "insurance"
	CollectionPharmacies    = "pharmacies"
	CollectionNotifications = "notifications"

	SettingsDocumentID = "app"
)
