package sfm

import (
	"context"
	"fmt"
	"os"
	"sync"

	"sfm/internal/fs"
)

// Service is the orchestration layer the CLI and the watcher call into.
// Every operation that changes the managed tree runs under one lock, so a
// watcher-triggered backup pass never interleaves with a sort or delete.
type Service struct {
	mu sync.Mutex

	table   *CategoryTable
	mover   *Mover
	engine  *BackupEngine
	oplog   OperationLog
	history PassHistory
	clock   Clock
	idgen   IDGenerator
	logger  Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(table *CategoryTable, engine *BackupEngine, oplog OperationLog, history PassHistory, clock Clock, idgen IDGenerator, logger Logger) *Service {
	return &Service{
		table:   table,
		mover:   NewMover(logger),
		engine:  engine,
		oplog:   oplog,
		history: history,
		clock:   clock,
		idgen:   idgen,
		logger:  logger,
	}
}

// Categories returns the category table in use.
func (s *Service) Categories() *CategoryTable {
	return s.table
}

// BackupDirName returns the backup folder name used by the engine.
func (s *Service) BackupDirName() string {
	return s.engine.DirName()
}

// RunBackup runs one backup pass over basePath and records it in the pass
// history. trigger says what started the pass (TriggerManual, ...).
func (s *Service) RunBackup(ctx context.Context, basePath, trigger string) (*BackupResult, error) {
	return s.RunBackupProgress(ctx, basePath, trigger, nil)
}

// RunBackupProgress is RunBackup reporting each examined file to progress.
func (s *Service) RunBackupProgress(ctx context.Context, basePath, trigger string, progress ProgressFunc) (*BackupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.engine.RunBackupProgress(ctx, basePath, progress)

	rec := newPassRecord(s.idgen.New(), basePath, trigger, result, err, s.clock.Now())
	if herr := s.history.RecordPass(rec); herr != nil {
		s.logger.Warn("failed to record backup pass", "id", rec.ID, "error", herr)
	}

	if err != nil {
		return result, fmt.Errorf("backup pass: %w", err)
	}
	return result, nil
}

// Pending returns the files the next backup pass over basePath would copy.
func (s *Service) Pending(ctx context.Context, basePath string) ([]string, error) {
	return s.engine.Pending(ctx, basePath)
}

// History returns the most recent backup passes, newest first.
func (s *Service) History(limit int) ([]*PassRecord, error) {
	passes, err := s.history.ListPasses(limit)
	if err != nil {
		return nil, fmt.Errorf("listing backup passes: %w", err)
	}
	return passes, nil
}

// OperationLog returns every entry of the operation log.
func (s *Service) OperationLog() ([]LogEntry, error) {
	return s.oplog.Entries()
}

// Sort moves the loose files directly inside basePath into category
// folders under basePath.
func (s *Service) Sort(basePath string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortLocked(basePath)
}

func (s *Service) sortLocked(basePath string) (*MoveResult, error) {
	if !fs.IsDir(basePath) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, basePath)
	}

	files, err := fs.ListFiles(basePath)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	for _, f := range s.table.Unmatched(files) {
		s.logger.Debug("file left uncategorized", "path", f)
	}

	categorized := s.table.Categorize(files)
	result := s.mover.MoveCategorized(basePath, s.table, categorized)
	s.logger.Info("files sorted", "base", basePath, "moved", len(result.Moved), "failed", len(result.Failed))
	return result, nil
}

// StoreFile creates an empty file for rec unless one already exists, then
// sorts the loose files of rec.Dir. created is false when the file was
// already present.
func (s *Service) StoreFile(rec FileRecord) (created bool, moved *MoveResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fs.IsDir(rec.Dir) {
		return false, nil, fmt.Errorf("%w: %s", ErrNotFound, rec.Dir)
	}
	if err := rec.Validate(); err != nil {
		return false, nil, err
	}

	path := rec.Path()
	if !fs.PathExists(path) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			return false, nil, fmt.Errorf("creating file: %w", err)
		}
		f.Close()
		created = true
		s.logger.Info("file stored", "path", path)
		s.record(path, OpCreated)
	}

	moved, err = s.sortLocked(rec.Dir)
	if err != nil {
		return created, nil, err
	}
	return created, moved, nil
}

// record appends to the operation log. A log failure never fails the
// operation that was logged.
func (s *Service) record(subject, operation string) {
	if err := s.oplog.Record(subject, operation); err != nil {
		s.logger.Warn("failed to write operation log", "subject", subject, "operation", operation, "error", err)
	}
}
