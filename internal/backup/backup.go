package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/rfountain/steward/internal/model"
	"github.com/rfountain/steward/internal/store"
)

// s3Client is the slice of the S3 API the manager uses, as an
// interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3         S3Config
	DBPath     string
	Passphrase string
	// Keep is how many completed backups to retain; older ones are
	// pruned after each run.
	Keep int
	// Hour (UTC) of the nightly run.
	Hour int
}

// Status is the manager's current state for the settings page.
type Status struct {
	Enabled    bool       `json:"enabled"`
	InProgress bool       `json:"in_progress"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

// Manager runs nightly encrypted database snapshots to S3-compatible
// storage.
type Manager struct {
	mu      sync.RWMutex
	cfg     Config
	status  Status
	db      *sql.DB
	backups *store.BackupStore
	client  s3Client
	logger  *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a backup manager. Missing S3 credentials or
// passphrase leave it disabled.
func NewManager(cfg Config, db *sql.DB, backups *store.BackupStore, logger *slog.Logger) *Manager {
	if cfg.Keep <= 0 {
		cfg.Keep = 14
	}
	if cfg.Hour == 0 {
		cfg.Hour = 3
	}

	m := &Manager{
		cfg:     cfg,
		db:      db,
		backups: backups,
		logger:  logger,
	}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.Enabled = true
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether backups are configured.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Enabled
}

// Status returns the current manager status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Start begins the nightly backup loop.
func (m *Manager) Start(ctx context.Context) {
	if !m.Enabled() {
		m.logger.Info("backups disabled, missing S3 credentials or passphrase")
		return
	}

	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now().UTC()
				if now.Hour() != m.cfg.Hour || now.Minute() != 0 {
					continue
				}
				if _, err := m.RunNow(ctx); err != nil {
					m.logger.Error("nightly backup failed", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the backup loop.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) setStatus(mut func(*Status)) {
	m.mu.Lock()
	mut(&m.status)
	m.mu.Unlock()
}

// RunNow snapshots the database, encrypts it, and uploads it. The
// upload gets bounded exponential retries; everything before it fails
// fast. Old backups beyond the retention count are pruned afterwards.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	if !m.Enabled() {
		return nil, fmt.Errorf("backup not configured")
	}

	m.setStatus(func(s *Status) { s.InProgress = true })
	defer m.setStatus(func(s *Status) { s.InProgress = false })

	objectKey := fmt.Sprintf("backups/%s-%s.db.enc", time.Now().UTC().Format("2006-01-02"), uuid.NewString())
	record, err := m.backups.Create(objectKey)
	if err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	fail := func(err error) (*model.Backup, error) {
		m.backups.MarkFailed(record.ID, err.Error())
		m.setStatus(func(s *Status) { s.LastError = err.Error() })
		return nil, err
	}

	tmpDir := os.TempDir()
	dbCopy := filepath.Join(tmpDir, fmt.Sprintf("steward-backup-%d.db", record.ID))
	encFile := filepath.Join(tmpDir, fmt.Sprintf("steward-backup-%d.db.enc", record.ID))
	defer os.Remove(dbCopy)
	defer os.Remove(encFile)

	// Checkpoint WAL so the file copy is a consistent snapshot.
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fail(fmt.Errorf("wal checkpoint: %w", err))
	}
	if err := copyFile(m.cfg.DBPath, dbCopy); err != nil {
		return fail(fmt.Errorf("copy database: %w", err))
	}

	salt, err := GenerateSalt()
	if err != nil {
		return fail(err)
	}
	if err := EncryptFile(dbCopy, encFile, m.cfg.Passphrase, salt); err != nil {
		return fail(fmt.Errorf("encrypt: %w", err))
	}

	sha, err := fileSHA256(encFile)
	if err != nil {
		return fail(fmt.Errorf("checksum: %w", err))
	}
	info, err := os.Stat(encFile)
	if err != nil {
		return fail(fmt.Errorf("stat encrypted file: %w", err))
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		f, err := os.Open(encFile)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(m.cfg.S3.Bucket),
			Key:           aws.String(objectKey),
			Body:          f,
			ContentLength: aws.Int64(info.Size()),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fail(fmt.Errorf("upload: %w", err))
	}

	if err := m.backups.MarkComplete(record.ID, info.Size(), sha); err != nil {
		return nil, fmt.Errorf("mark complete: %w", err)
	}

	now := time.Now().UTC()
	m.setStatus(func(s *Status) {
		s.LastBackup = &now
		s.LastError = ""
	})

	m.prune(ctx)

	return m.backups.GetByID(record.ID)
}

// prune removes history rows beyond the retention count and deletes
// their remote objects.
func (m *Manager) prune(ctx context.Context) {
	keys, err := m.backups.PruneOlderThan(m.cfg.Keep)
	if err != nil {
		m.logger.Error("prune backups", "error", err)
		return
	}
	for _, key := range keys {
		if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.S3.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete remote backup object", "key", key, "error", err)
		}
	}
}

// Restore downloads a backup, decrypts it, validates its integrity,
// and replaces the live database file. The process must restart
// afterwards to reopen the database; the caller handles that.
func (m *Manager) Restore(ctx context.Context, backupID int64) error {
	if !m.Enabled() {
		return fmt.Errorf("backup not configured")
	}

	record, err := m.backups.GetByID(backupID)
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.Status != model.BackupStatusComplete {
		return fmt.Errorf("backup %d not available", backupID)
	}

	tmpDir := os.TempDir()
	encFile := filepath.Join(tmpDir, fmt.Sprintf("steward-restore-%d.db.enc", backupID))
	decFile := filepath.Join(tmpDir, fmt.Sprintf("steward-restore-%d.db", backupID))
	defer os.Remove(encFile)
	defer os.Remove(decFile)

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(record.ObjectKey),
	})
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer result.Body.Close()

	out, err := os.Create(encFile)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(out, result.Body); err != nil {
		out.Close()
		return fmt.Errorf("write downloaded file: %w", err)
	}
	out.Close()

	if err := DecryptFile(encFile, decFile, m.cfg.Passphrase); err != nil {
		return fmt.Errorf("decrypt backup: %w", err)
	}

	check, err := sql.Open("sqlite", decFile)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	var integrity string
	err = check.QueryRow("PRAGMA integrity_check").Scan(&integrity)
	check.Close()
	if err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if integrity != "ok" {
		return fmt.Errorf("integrity check failed: %s", integrity)
	}

	if err := copyFile(decFile, m.cfg.DBPath); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}
	os.Remove(m.cfg.DBPath + "-wal")
	os.Remove(m.cfg.DBPath + "-shm")

	return nil
}

// Download streams an encrypted backup for offline keeping.
func (m *Manager) Download(ctx context.Context, backupID int64) (io.ReadCloser, int64, error) {
	if !m.Enabled() {
		return nil, 0, fmt.Errorf("backup not configured")
	}

	record, err := m.backups.GetByID(backupID)
	if err != nil {
		return nil, 0, fmt.Errorf("get backup: %w", err)
	}
	if record == nil {
		return nil, 0, fmt.Errorf("backup not found")
	}

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(record.ObjectKey),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("download: %w", err)
	}
	return result.Body, record.SizeBytes, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
