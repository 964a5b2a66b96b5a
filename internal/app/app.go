package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"sfm/internal/config"
	"sfm/internal/database"
	"sfm/internal/encryption"
	"sfm/internal/oplog"
	"sfm/internal/sfm"
	"sfm/internal/watch"
)

// Options tune how an SFMApp reports progress.
type Options struct {
	// Operation names the CLI command being run (e.g. "menu", "backup").
	Operation string
	// Console receives log records in addition to the log file. Nil keeps
	// logging in the file only.
	Console io.Writer
	// Level drops records below it. Nil keeps everything.
	Level slog.Leveler
}

// SFMApp is the application layer between the CLI and sfm.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages resource lifecycle on Close.
type SFMApp struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	oplog     *oplog.Store
	encryptor sfm.Encryptor
	service   *sfm.Service
	logger    sfm.Logger
	clock     sfm.Clock
	op        *Operation
	logFile   *os.File
}

// NewSFMApp creates a fully wired SFMApp from the given config.
// The caller must call Close when done.
func NewSFMApp(cfg *config.Config, opts Options) (*SFMApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clock := sfm.RealClock{}
	idgen := sfm.UUIDGenerator{}
	op := NewOperation(idgen.New(), opts.Operation, clock.Now())

	slogger, logFile, err := newLogger(cfg.LogDir, op.ID, opts.Level, opts.Console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	store, err := oplog.NewStore(cfg.OperationLog, clock)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening operation log: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}

	table := CategoryTable(cfg)
	engine := sfm.NewBackupEngine(cfg.BackupDirName, cfg.Filesystem.Ignore, enc, clock, logger)
	svc := sfm.NewService(table, engine, store, db, clock, idgen, logger)

	logger.Debug("operation started", "operation", op.Name)

	return &SFMApp{
		cfg:       cfg,
		db:        db,
		oplog:     store,
		encryptor: enc,
		service:   svc,
		logger:    logger,
		clock:     clock,
		op:        op,
		logFile:   logFile,
	}, nil
}

// CategoryTable builds the category table from config, falling back to the
// built-in table when none is configured.
func CategoryTable(cfg *config.Config) *sfm.CategoryTable {
	if len(cfg.Categories) == 0 {
		return sfm.DefaultCategoryTable()
	}
	cats := make([]sfm.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		cats = append(cats, sfm.Category{Name: c.Name, Extensions: c.Extensions})
	}
	return sfm.NewCategoryTable(cats)
}

// Config returns the config the app was built from.
func (a *SFMApp) Config() *config.Config {
	return a.cfg
}

// Service returns the wired service.
func (a *SFMApp) Service() *sfm.Service {
	return a.service
}

// Logger returns the app logger.
func (a *SFMApp) Logger() sfm.Logger {
	return a.logger
}

// Encrypted reports whether backup passes write encrypted copies.
func (a *SFMApp) Encrypted() bool {
	return a.encryptor != nil
}

// ResolveBase turns a raw path argument into an absolute base path. An
// empty argument selects the configured base path.
func (a *SFMApp) ResolveBase(rawPath string) (string, error) {
	if rawPath == "" {
		rawPath = a.cfg.BasePath
	}
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return p, nil
}

// Backup runs one manual backup pass over rawPath.
func (a *SFMApp) Backup(ctx context.Context, rawPath string, progress sfm.ProgressFunc) (*sfm.BackupResult, error) {
	base, err := a.ResolveBase(rawPath)
	if err != nil {
		return nil, err
	}
	return a.service.RunBackupProgress(ctx, base, sfm.TriggerManual, progress)
}

// Sort resolves rawPath and sorts its loose files into category folders.
func (a *SFMApp) Sort(rawPath string) (*sfm.MoveResult, error) {
	base, err := a.ResolveBase(rawPath)
	if err != nil {
		return nil, err
	}
	return a.service.Sort(base)
}

// StartWatching runs a startup backup pass over base and then watches it,
// running a full pass whenever a new file appears. A failed startup pass is
// logged and recorded in the pass history; watching starts regardless. The
// returned watcher must be stopped by the caller.
func (a *SFMApp) StartWatching(ctx context.Context, base string) (*watch.Watcher, error) {
	if _, err := a.service.RunBackup(ctx, base, sfm.TriggerStartup); err != nil {
		a.logger.Error("startup backup pass failed", "base", base, "error", err)
	}

	trigger := func(ctx context.Context) error {
		_, err := a.service.RunBackup(ctx, base, sfm.TriggerWatch)
		return err
	}
	w, err := watch.Start(ctx, base, a.service.BackupDirName(), trigger, a.logger)
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	a.logger.Info("watching for new files", "base", base)
	return w, nil
}

// Fail marks the running operation as failed; Close logs the outcome.
func (a *SFMApp) Fail(err error) {
	a.op.Fail()
	a.logger.Error("operation failed", "operation", a.op.Name, "error", err)
}

// Close closes the database and the log file.
func (a *SFMApp) Close() error {
	var firstErr error

	a.logger.Debug("operation finished", "operation", a.op.Name, "status", a.op.Status,
		"elapsed", a.clock.Now().Sub(a.op.StartedAt))

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
