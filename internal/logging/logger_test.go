package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetState(t *testing.T) {
	t.Helper()
	CloseAll()
	logsDir = ""
	opts = Options{}
	logLevel = LevelInfo
	t.Cleanup(CloseAll)
}

func readCategory(t *testing.T, dir string, cat Category) string {
	t.Helper()
	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, "logs", date+"_"+string(cat)+".log"))
	if err != nil {
		t.Fatalf("read %s log: %v", cat, err)
	}
	return string(data)
}

func TestInitialize_DisabledWritesNothing(t *testing.T) {
	resetState(t)
	dir := t.TempDir()

	if err := Initialize(dir, Options{DebugMode: false}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	API("should not appear")

	if _, err := os.Stat(filepath.Join(dir, "logs")); !os.IsNotExist(err) {
		t.Fatalf("expected no logs directory in production mode, stat err = %v", err)
	}
	if IsDebugMode() {
		t.Error("expected debug mode to be off")
	}
}

func TestInitialize_RequiresDir(t *testing.T) {
	resetState(t)
	if err := Initialize("", Options{}); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestCategoriesWriteSeparateFiles(t *testing.T) {
	resetState(t)
	dir := t.TempDir()

	if err := Initialize(dir, Options{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	API("generate %s", "ok")
	Session("turn %d", 1)
	Store("saved key")

	if got := readCategory(t, dir, CategoryAPI); !strings.Contains(got, "[INFO] generate ok") {
		t.Errorf("api log missing entry: %q", got)
	}
	if got := readCategory(t, dir, CategorySession); !strings.Contains(got, "turn 1") {
		t.Errorf("session log missing entry: %q", got)
	}
	if got := readCategory(t, dir, CategoryBoot); !strings.Contains(got, "logging initialized") {
		t.Errorf("boot log missing banner: %q", got)
	}
}

func TestCategoryFilter(t *testing.T) {
	resetState(t)
	dir := t.TempDir()

	err := Initialize(dir, Options{
		DebugMode:  true,
		Categories: map[string]bool{"api": false},
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if IsCategoryEnabled(CategoryAPI) {
		t.Error("api should be disabled")
	}
	if !IsCategoryEnabled(CategoryUI) {
		t.Error("unlisted categories default to enabled")
	}
}

func TestLevelThreshold(t *testing.T) {
	resetState(t)
	dir := t.TempDir()

	if err := Initialize(dir, Options{DebugMode: true, Level: "warn"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	l := Get(CategoryUI)
	l.Info("quiet")
	l.Warn("loud")

	got := readCategory(t, dir, CategoryUI)
	if strings.Contains(got, "quiet") {
		t.Errorf("info line should be filtered at warn level: %q", got)
	}
	if !strings.Contains(got, "[WARN] loud") {
		t.Errorf("warn line missing: %q", got)
	}
}

func TestJSONFormat(t *testing.T) {
	resetState(t)
	dir := t.TempDir()

	if err := Initialize(dir, Options{DebugMode: true, JSONFormat: true}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	StoreError("rename failed")

	got := readCategory(t, dir, CategoryStore)
	if !strings.Contains(got, `"cat":"store"`) || !strings.Contains(got, `"lvl":"error"`) {
		t.Errorf("expected structured entry, got %q", got)
	}
}

func TestTimer_StopWithThreshold(t *testing.T) {
	resetState(t)
	dir := t.TempDir()

	if err := Initialize(dir, Options{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	timer := StartTimer(CategoryAPI, "generateContent")
	time.Sleep(2 * time.Millisecond)
	if elapsed := timer.StopWithThreshold(time.Nanosecond); elapsed <= 0 {
		t.Fatalf("elapsed = %v, want > 0", elapsed)
	}

	if got := readCategory(t, dir, CategoryAPI); !strings.Contains(got, "generateContent took") {
		t.Errorf("expected slow-operation warning, got %q", got)
	}
}
