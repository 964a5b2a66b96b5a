package sfm_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"sfm/internal/database"
	"sfm/internal/sfm"
	"sfm/internal/testutil"
)

type testService struct {
	svc     *sfm.Service
	oplog   *testutil.MemoryOperationLog
	history *database.SQLiteDatabase
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	clock := testutil.FixedClock()
	logger := sfm.NewNopLogger()
	oplog := testutil.NewMemoryOperationLog(clock)
	history := testutil.NewTestDatabase(t)
	engine := sfm.NewBackupEngine("", nil, nil, clock, logger)
	svc := sfm.NewService(sfm.DefaultCategoryTable(), engine, oplog, history, clock, testutil.NewStubIDGenerator(), logger)
	return &testService{svc: svc, oplog: oplog, history: history}
}

func TestService_Sort(t *testing.T) {
	ts := newTestService(t)
	base := t.TempDir()
	testutil.WriteTree(t, base, map[string]string{
		"a.docx":         "d",
		"b.mp3":          "m",
		"c.png":          "p",
		"d.xyz":          "x",
		"Music/keep.mp3": "k",
	})

	result, err := ts.svc.Sort(base)
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if len(result.Moved) != 3 || len(result.Failed) != 0 {
		t.Errorf("Sort() = %+v", result)
	}

	got := testutil.ReadTree(t, base, "")
	want := map[string]string{
		"Documents/a.docx": "d",
		"Audios/b.mp3":     "m",
		"Pictures/c.png":   "p",
		"d.xyz":            "x",
		"Music/keep.mp3":   "k",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tree after Sort = %v, want %v", got, want)
	}

	folders, err := ts.svc.ListFolders(base)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(folders, []string{"Audios", "Documents", "Music", "Pictures"}) {
		t.Errorf("folders = %v, want no empty category folders", folders)
	}
}

func TestService_SortIsolatesFailures(t *testing.T) {
	ts := newTestService(t)
	base := t.TempDir()
	testutil.WriteTree(t, base, map[string]string{
		"report.pdf":           "new",
		"Documents/report.pdf": "old",
		"notes.txt":            "n",
		"song.mp3":             "s",
	})

	result, err := ts.svc.Sort(base)
	if err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if len(result.Failed) != 1 || result.Failed[0].Path != filepath.Join(base, "report.pdf") {
		t.Fatalf("Failed = %v, want report.pdf only", result.Failed)
	}
	if len(result.Moved) != 2 {
		t.Errorf("Moved = %v, want notes.txt and song.mp3", result.Moved)
	}

	got := testutil.ReadTree(t, base, "")
	want := map[string]string{
		"report.pdf":           "new",
		"Documents/report.pdf": "old",
		"Documents/notes.txt":  "n",
		"Audios/song.mp3":      "s",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tree after Sort = %v, want %v", got, want)
	}
}

func TestService_SortMissingBase(t *testing.T) {
	ts := newTestService(t)
	if _, err := ts.svc.Sort(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, sfm.ErrNotFound) {
		t.Errorf("Sort() error = %v, want ErrNotFound", err)
	}
}

func TestService_StoreFile(t *testing.T) {
	ts := newTestService(t)
	base := t.TempDir()

	created, moved, err := ts.svc.StoreFile(sfm.NewFileRecord(base, "notes", "TXT"))
	if err != nil {
		t.Fatalf("StoreFile() error = %v", err)
	}
	if !created {
		t.Error("created = false for a new file")
	}
	if len(moved.Moved) != 1 {
		t.Errorf("Moved = %v", moved.Moved)
	}
	if _, err := os.Stat(filepath.Join(base, "Documents", "notes.txt")); err != nil {
		t.Errorf("stored file not sorted: %v", err)
	}

	testutil.WriteTree(t, base, map[string]string{"dup.txt": "keep me"})
	created, _, err = ts.svc.StoreFile(sfm.NewFileRecord(base, "dup", "txt"))
	if err != nil {
		t.Fatalf("StoreFile() existing error = %v", err)
	}
	if created {
		t.Error("created = true for an existing file")
	}
	data, err := os.ReadFile(filepath.Join(base, "Documents", "dup.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "keep me" {
		t.Errorf("existing file content = %q, was truncated", data)
	}

	if ops := ts.oplog.Operations(); !reflect.DeepEqual(ops, []string{sfm.OpCreated}) {
		t.Errorf("operations = %v, want one created", ops)
	}
}

func TestService_StoreFileValidation(t *testing.T) {
	ts := newTestService(t)
	base := t.TempDir()

	if _, _, err := ts.svc.StoreFile(sfm.NewFileRecord(base, "  ", "txt")); !errors.Is(err, sfm.ErrInvalidName) {
		t.Errorf("StoreFile() with empty name error = %v, want ErrInvalidName", err)
	}
	for _, name := range []string{"../escape", "sub/x", filepath.Join("..", "..", "x")} {
		if _, _, err := ts.svc.StoreFile(sfm.NewFileRecord(base, name, "txt")); !errors.Is(err, sfm.ErrInvalidName) {
			t.Errorf("StoreFile(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(base), "escape.txt")); !os.IsNotExist(err) {
		t.Errorf("file created outside the base: %v", err)
	}
	if _, _, err := ts.svc.StoreFile(sfm.NewFileRecord(filepath.Join(base, "nope"), "a", "txt")); !errors.Is(err, sfm.ErrNotFound) {
		t.Errorf("StoreFile() in missing dir error = %v, want ErrNotFound", err)
	}
}

func TestService_RunBackupRecordsPasses(t *testing.T) {
	ts := newTestService(t)
	base := t.TempDir()
	testutil.WriteTree(t, base, map[string]string{"a.txt": "a"})

	if _, err := ts.svc.RunBackup(context.Background(), base, sfm.TriggerManual); err != nil {
		t.Fatalf("RunBackup() error = %v", err)
	}
	if _, err := ts.svc.RunBackup(context.Background(), base, sfm.TriggerWatch); err != nil {
		t.Fatalf("RunBackup() error = %v", err)
	}
	_, err := ts.svc.RunBackup(context.Background(), filepath.Join(base, "missing"), sfm.TriggerWatch)
	if !errors.Is(err, sfm.ErrBaseMissing) {
		t.Fatalf("RunBackup() error = %v, want ErrBaseMissing", err)
	}

	passes, err := ts.svc.History(0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(passes) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(passes))
	}

	byID := make(map[string]*sfm.PassRecord)
	for _, p := range passes {
		byID[p.ID] = p
	}
	if p := byID["id-1"]; p == nil || p.Status != sfm.PassSuccess || p.Copied != 1 || p.Trigger != sfm.TriggerManual {
		t.Errorf("first pass = %+v", p)
	}
	if p := byID["id-2"]; p == nil || p.Copied != 0 || p.Skipped != 1 {
		t.Errorf("second pass = %+v", p)
	}
	if p := byID["id-3"]; p == nil || p.Status != "failed" || !strings.Contains(p.Message, "does not exist") {
		t.Errorf("failed pass = %+v", p)
	}

	limited, err := ts.svc.History(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("History(1) returned %d passes", len(limited))
	}
}

func TestService_OperationLogFailureDoesNotFail(t *testing.T) {
	ts := newTestService(t)
	ts.oplog.Err = errors.New("disk full")
	base := t.TempDir()
	testutil.WriteTree(t, base, map[string]string{"Old/": ""})

	if _, err := ts.svc.DeleteFolder(base, "old"); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "Old")); !os.IsNotExist(err) {
		t.Error("folder not deleted")
	}
}
