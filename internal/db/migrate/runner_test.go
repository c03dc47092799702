package migrate

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/ninadrathod/my-website/internal/db"
)

func TestRun_EmptyDSN(t *testing.T) {
	for _, dsn := range []string{"", "   "} {
		_, err := Run(dsn, Up)
		if !errors.Is(err, ErrNoDSN) {
			t.Errorf("Run(%q) err = %v, want ErrNoDSN", dsn, err)
		}
	}
}

func TestParseDirection(t *testing.T) {
	testCases := []struct {
		in   string
		want Direction
		err  bool
	}{
		{"up", Up, false},
		{"down", Down, false},
		{"", "", true},
		{"UP", "", true},
		{"sideways", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDirection(tc.in)
			if tc.err {
				if err == nil {
					t.Errorf("ParseDirection(%q) should fail", tc.in)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("ParseDirection(%q) = %q, %v, want %q", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	_, err := Run("postgres://localhost/test", Direction("left"))
	if err == nil || !strings.Contains(err.Error(), "direction") {
		t.Errorf("Run with bad direction err = %v, want direction error", err)
	}
}

func TestRun_InvalidDSN(t *testing.T) {
	_, err := Run("postgres://localhost with spaces/test", Up)
	if err == nil {
		t.Fatal("Run with malformed DSN should return error")
	}
	if errors.Is(err, ErrNoChange) {
		t.Error("Run should never surface ErrNoChange")
	}
}

func TestMigrationFiles_Paired(t *testing.T) {
	ups, err := fs.Glob(db.MigrationFS, "migrations/*.up.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(ups) == 0 {
		t.Fatal("no up migrations embedded")
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(db.MigrationFS, down); err != nil {
			t.Errorf("%s has no matching down migration", up)
		}
	}
}
