package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quiz-intake-service/internal/config"
	"quiz-intake-service/internal/domain"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := "local:\n  driver: sqlite\n  path: " + filepath.Join(dir, "offline.db") + "\nadmin:\n  password: secret\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestQueueCommandsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	path := writeTestConfig(t)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	services, probe, err := buildServices(ctx, cfg)
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	if probe != nil {
		t.Fatalf("expected no probe without postgres")
	}
	id, err := services.Submissions.Save(ctx, domain.SubmissionDraft{
		Respondent: domain.Respondent{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "+100"},
		QuizID:     "sample",
		QuizTitle:  "Sample quiz",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := services.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var out bytes.Buffer
	if err := runQueueList(ctx, path, false, &out); err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out.String(), id) {
		t.Fatalf("expected %s listed, got:\n%s", id, out.String())
	}

	out.Reset()
	if err := runSync(ctx, path, &out); err != nil {
		t.Fatalf("sync: %v", err)
	}
	var report domain.SyncReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Attempted != 1 || report.Succeeded != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	out.Reset()
	if err := runQueueList(ctx, path, false, &out); err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if strings.Contains(out.String(), id) {
		t.Fatalf("synced submission still listed as pending:\n%s", out.String())
	}
	out.Reset()
	if err := runQueueList(ctx, path, true, &out); err != nil {
		t.Fatalf("queue list --all: %v", err)
	}
	if !strings.Contains(out.String(), id) {
		t.Fatalf("expected synced submission with --all:\n%s", out.String())
	}

	out.Reset()
	if err := runQueueClear(ctx, path, &out); err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	out.Reset()
	if err := runQueueList(ctx, path, true, &out); err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if strings.Contains(out.String(), id) {
		t.Fatalf("expected empty queue after clear:\n%s", out.String())
	}
}

func TestAdminPasswordHashPrefersConfiguredHash(t *testing.T) {
	var cfg config.Config
	cfg.Admin.PasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	cfg.Admin.Password = "ignored"
	hash, err := adminPasswordHash(cfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if string(hash) != cfg.Admin.PasswordHash {
		t.Fatalf("expected configured hash to be used verbatim")
	}
}

func TestMigratingProbeRetriesUntilMigrated(t *testing.T) {
	ctx := context.Background()
	reachable := false
	migrateErr := errors.New("relation does not exist")
	migrations := 0
	probe := migratingProbe(
		func(context.Context) error {
			if !reachable {
				return errors.New("connection refused")
			}
			return nil
		},
		func(context.Context) error {
			migrations++
			return migrateErr
		},
	)

	if err := probe(ctx); err == nil || migrations != 0 {
		t.Fatalf("unreachable database must not run migrations, got %v after %d", err, migrations)
	}

	reachable = true
	if err := probe(ctx); !errors.Is(err, migrateErr) {
		t.Fatalf("expected failed migration to keep the probe failing, got %v", err)
	}

	migrateErr = nil
	if err := probe(ctx); err != nil {
		t.Fatalf("expected probe to pass once migrated, got %v", err)
	}
	if err := probe(ctx); err != nil || migrations != 2 {
		t.Fatalf("expected migrations to stop after success, ran %d times (err %v)", migrations, err)
	}
}
