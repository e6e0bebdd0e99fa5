package adminapi

import (
	"context"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminclient"
)

const (
	systemStatusPath = "/system/status"
	backupStatusPath = "/system/backup/status"
	backupConfigPath = "/system/backup/config"
)

// SystemStatus runs the status checks. The endpoint only accepts POST.
func (a *API) SystemStatus(ctx context.Context) domain.Envelope[[]domain.StatusItem] {
	return decodeList[domain.StatusItem](a.client.Post(ctx, systemStatusPath, nil))
}

// BackupStatus lists the existing backups and the backup health.
func (a *API) BackupStatus(ctx context.Context) domain.Envelope[domain.BackupStatus] {
	return domain.MapEnvelope(
		adminclient.Decode[domain.BackupStatus](a.client.Get(ctx, backupStatusPath)),
		func(status domain.BackupStatus) (domain.BackupStatus, error) {
			if status.Backups == nil {
				status.Backups = []domain.Backup{}
			}

			return status, nil
		},
	)
}

// BackupConfig returns the backup target. A missing minimum age defaults to three days.
func (a *API) BackupConfig(ctx context.Context) domain.Envelope[domain.BackupConfig] {
	return domain.MapEnvelope(
		adminclient.Decode[domain.BackupConfig](a.client.Get(ctx, backupConfigPath)),
		func(cfg domain.BackupConfig) (domain.BackupConfig, error) {
			cfg.MinAge = domain.FlexString(cfg.MinAge.Or(domain.DefaultBackupMinAge))

			return cfg, nil
		},
	)
}

// SetBackupConfig stores the backup target and retention.
func (a *API) SetBackupConfig(ctx context.Context, cfg domain.BackupConfig) domain.Envelope[string] {
	form := adminclient.NewForm().
		Add("target", cfg.Target).
		Add("target_user", cfg.TargetUser).
		Add("target_pass", cfg.TargetPass).
		Add("min_age", cfg.MinAge.Or(domain.DefaultBackupMinAge))

	return adminclient.Text(a.client.Post(ctx, backupConfigPath, form))
}
