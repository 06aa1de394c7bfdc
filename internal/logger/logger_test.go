package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestResolveLogFilePathDefaultDir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
	if filepath.Base(filepath.Dir(got)) != defaultLogDirName {
		t.Fatalf("unexpected log dir: %s", filepath.Dir(got))
	}
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("expected log file to be created: %v", err)
	}
}

func TestNewReleaseWritesJSONToConfiguredFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "release.log"})
	log.Sugar().Infow("password_reset_requested", "email", "a@b.com")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"message":"password_reset_requested"`) {
		t.Fatalf("expected JSON message field, got=%s", text)
	}
	if !strings.Contains(text, `"email":"a@b.com"`) {
		t.Fatalf("expected structured field, got=%s", text)
	}
}

func TestNewDebugDoesNotWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("debug-log-test")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}

func TestNormalizePositiveInt(t *testing.T) {
	if got := normalizePositiveInt(0, 7); got != 7 {
		t.Fatalf("zero should fallback, got %d", got)
	}
	if got := normalizePositiveInt(3, 7); got != 3 {
		t.Fatalf("positive should be kept, got %d", got)
	}
}

func TestNewReleaseRedactsSensitiveFields(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "redact.log"})
	log.Sugar().With("session_token", "tok-123").Warnw("password_reset_mail",
		"email", "a@b.com",
		"code", "482913",
		"Password", "Passw0rd",
	)
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "redact.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	text := string(content)
	for _, secret := range []string{"482913", "Passw0rd", "tok-123"} {
		if strings.Contains(text, secret) {
			t.Fatalf("release log leaked %q: %s", secret, text)
		}
	}
	if !strings.Contains(text, `"code":"[redacted]"`) || !strings.Contains(text, `"email":"a@b.com"`) {
		t.Fatalf("expected redacted code and plain email, got=%s", text)
	}
}

func TestNewHonorsConfiguredLevel(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "level.log", Level: "warn"})
	log.Info("info-dropped")
	log.Warn("warn-kept")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "level.log"))
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	text := string(content)
	if strings.Contains(text, "info-dropped") || !strings.Contains(text, "warn-kept") {
		t.Fatalf("warn level not applied, got=%s", text)
	}
}

func TestResolveLevel(t *testing.T) {
	if got := resolveLevel("", true).Level(); got != zapcore.DebugLevel {
		t.Fatalf("debug mode default want debug got %s", got)
	}
	if got := resolveLevel("bogus", false).Level(); got != zapcore.InfoLevel {
		t.Fatalf("invalid level should fallback to info, got %s", got)
	}
	if got := resolveLevel("ERROR", false).Level(); got != zapcore.ErrorLevel {
		t.Fatalf("explicit level want error got %s", got)
	}
}
