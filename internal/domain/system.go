package domain

// StatusItem is one line of the system status checks.
type StatusItem struct {
	Type  string            `json:"type"` // heading, ok, error or warning
	Text  string            `json:"text"`
	Extra []StatusItemExtra `json:"extra"`
}

// StatusItemExtra is additional detail attached to a status item.
type StatusItemExtra struct {
	Text      string `json:"text"`
	Monospace bool   `json:"monospace"`
}

// Backup is one entry of the backup history.
type Backup struct {
	Date   string     `json:"date"`
	Type   string     `json:"type"`
	Size   FlexString `json:"size"`
	Status string     `json:"status"`
}

// BackupStatus is returned by the backup status endpoint.
type BackupStatus struct {
	CanBackup  bool     `json:"can_backup"`
	Backups    []Backup `json:"backups"`
	Error      string   `json:"error"`
	NextBackup string   `json:"next_backup"`
}

// BackupConfig is the backup target configuration.
type BackupConfig struct {
	Target     string     `json:"target"`
	TargetUser string     `json:"target_user"`
	TargetPass string     `json:"target_pass"`
	MinAge     FlexString `json:"min_age"`
}

// DefaultBackupMinAge is used when the backend does not report a minimum age.
const DefaultBackupMinAge = "3"
