package migrate

import (
	"context"
	"strings"
	"testing"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database/memory"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/migration"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
)

func testOptions() Options {
	return Options{ServiceName: "storage", Logger: logger.NopLogger{}}
}

func newMigrator(t *testing.T) (*migration.Migrator, database.Provider, database.Provider) {
	t.Helper()
	source := memory.New(memory.Options{})
	target := memory.New(memory.Options{})
	return migration.New(source, target, migration.Options{}), source, target
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name            string
		args            []string
		wantSub         string
		wantCollections []string
		wantErr         bool
	}{
		{name: "no args defaults to copy", args: nil, wantSub: "copy", wantCollections: DefaultCollections},
		{name: "explicit validate", args: []string{"validate"}, wantSub: "validate", wantCollections: DefaultCollections},
		{name: "named collections", args: []string{"copy", "accounts", "missions"}, wantSub: "copy", wantCollections: []string{"accounts", "missions"}},
		{name: "empty collection name", args: []string{"copy", ""}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub, collections, err := ParseArgs(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if sub != tc.wantSub {
				t.Errorf("subcommand = %q, want %q", sub, tc.wantSub)
			}
			if len(collections) != len(tc.wantCollections) {
				t.Fatalf("collections = %v, want %v", collections, tc.wantCollections)
			}
			for i := range collections {
				if collections[i] != tc.wantCollections[i] {
					t.Errorf("collections[%d] = %q, want %q", i, collections[i], tc.wantCollections[i])
				}
			}
		})
	}
}

func TestRunCopy(t *testing.T) {
	m, source, target := newMigrator(t)
	ctx := context.Background()
	for i, id := range []string{"a1", "a2"} {
		if _, err := source.Create(ctx, "accounts", database.Document{"seq": i}, id); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	if err := Run([]string{"copy", "accounts"}, testOptions(), m); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	count, err := target.Count(ctx, "accounts", nil)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("target count = %d, want 2", count)
	}
}

func TestRunValidate(t *testing.T) {
	m, source, _ := newMigrator(t)
	ctx := context.Background()
	if _, err := source.Create(ctx, "accounts", database.Document{"name": "Ada"}, "a1"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	err := Run([]string{"validate", "accounts"}, testOptions(), m)
	if err == nil {
		t.Fatal("expected validation failure against empty target")
	}
	if !strings.Contains(err.Error(), "1 missing") {
		t.Errorf("error = %v, want missing count", err)
	}

	if err := Run([]string{"copy", "accounts"}, testOptions(), m); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if err := Run([]string{"validate", "accounts"}, testOptions(), m); err != nil {
		t.Fatalf("validate after copy failed: %v", err)
	}
}

func TestRunUnknownSubcommand(t *testing.T) {
	m, _, _ := newMigrator(t)
	err := Run([]string{"prune"}, testOptions(), m)
	if err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Fatalf("error = %v, want usage message", err)
	}
}

func TestRunParsedValidatesOptions(t *testing.T) {
	m, _, _ := newMigrator(t)

	if err := RunParsed("copy", DefaultCollections, Options{ServiceName: "storage"}, m); err == nil {
		t.Error("expected error without logger")
	}
	if err := RunParsed("copy", DefaultCollections, Options{Logger: logger.NopLogger{}}, m); err == nil {
		t.Error("expected error without service name")
	}
	if err := RunParsed("copy", DefaultCollections, testOptions(), nil); err == nil {
		t.Error("expected error without migrator")
	}
}
