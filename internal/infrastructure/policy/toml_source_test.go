package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"catalogo/internal/domain/moderation"
	"catalogo/internal/errs"
)

func writePolicy(t *testing.T, path string, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
}

func TestTOMLSourceRereadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moderation.toml")
	fallback := moderation.Policy{StrikeLimit: 3, SuspensionDurationDays: 7}
	source := NewTOMLSource(path, fallback)
	ctx := context.Background()

	got, err := source.Policy(ctx)
	if err != nil {
		t.Fatalf("Policy() missing file error = %v", err)
	}
	if got != fallback {
		t.Fatalf("Policy() missing file = %+v, want fallback", got)
	}

	writePolicy(t, path, "[moderation]\nstrike_limit = 5\n")
	got, err = source.Policy(ctx)
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	if got.StrikeLimit != 5 || got.SuspensionDurationDays != 7 {
		t.Fatalf("Policy() = %+v, want limit 5 days 7", got)
	}

	writePolicy(t, path, "[moderation]\nstrike_limit = 2\nsuspension_duration_days = 30\n")
	got, err = source.Policy(ctx)
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	if got.StrikeLimit != 2 || got.SuspensionDurationDays != 30 {
		t.Fatalf("Policy() = %+v, want limit 2 days 30", got)
	}
}

func TestTOMLSourceRejectsBadFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moderation.toml")
	source := NewTOMLSource(path, moderation.Policy{StrikeLimit: 3, SuspensionDurationDays: 7})

	writePolicy(t, path, "[moderation\n")
	if _, err := source.Policy(context.Background()); err == nil {
		t.Fatalf("Policy() expected decode error")
	}

	writePolicy(t, path, "[moderation]\nstrike_limit = -1\n")
	if _, err := source.Policy(context.Background()); errs.KindOf(err) != errs.KindInvalidOperation {
		t.Fatalf("Policy() error = %v, want invalid operation", err)
	}
}
