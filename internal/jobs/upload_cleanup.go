// Package jobs holds the scheduled maintenance tasks of the forecast
// service. The single job today purges stale workbook files from the
// upload folder once their database reference is gone.
package jobs

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"HabitusForecast/internal/config"
	"HabitusForecast/internal/serviceiface"
)

type CleanupService struct {
	config    map[string]interface{}
	pool      *pgxpool.Pool
	cron      *cron.Cron
	uploadDir string
	schedule  string
	retention time.Duration
}

func NewCleanupService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	schedule, _ := cfg["schedule"].(string)
	if schedule == "" {
		schedule = config.DefaultCleanupCron
	}
	uploadDir, _ := cfg["upload_dir"].(string)
	if uploadDir == "" {
		uploadDir = os.Getenv("UPLOAD_DIR")
	}
	if uploadDir == "" {
		uploadDir = config.DefaultUploadDir
	}
	retentionDays, _ := cfg["retention_days"].(int)
	if retentionDays == 0 {
		if f, ok := cfg["retention_days"].(float64); ok {
			retentionDays = int(f)
		}
	}
	if retentionDays == 0 {
		retentionDays = config.UploadRetentionDays
	}
	return &CleanupService{
		config:    cfg,
		pool:      pool,
		uploadDir: uploadDir,
		schedule:  schedule,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (s *CleanupService) Name() string {
	return "cleanup"
}

func (s *CleanupService) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.purgeStaleUploads); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[Cleanup] scheduled upload purge (%s) for %s", s.schedule, s.uploadDir)
	return nil
}

func (s *CleanupService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return nil
}

// purgeStaleUploads removes workbook files older than the retention window
// that no arquivos_upload row references anymore. Referenced files are kept
// indefinitely; they back the audit trail of their project.
func (s *CleanupService) purgeStaleUploads() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	files, err := os.ReadDir(s.uploadDir)
	if err != nil {
		log.Printf("[Cleanup] cannot read upload dir %s: %v", s.uploadDir, err)
		return
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		fullPath := filepath.Join(s.uploadDir, f.Name())
		info, err := os.Stat(fullPath)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		var refs int
		err = s.pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM arquivos_upload WHERE caminho_storage = $1
		`, fullPath).Scan(&refs)
		if err != nil {
			log.Printf("[Cleanup] reference check failed for %s: %v", f.Name(), err)
			continue
		}
		if refs > 0 {
			continue
		}
		if err := os.Remove(fullPath); err != nil {
			log.Printf("[Cleanup] failed to remove %s: %v", f.Name(), err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("[Cleanup] removed %d stale upload file(s)", removed)
	}
}
