package testsupport

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-tiered-cache/cache"
	"github.com/goliatone/go-tiered-cache/mapper"
	"github.com/goliatone/go-tiered-cache/tiered"
)

//go:embed testdata/seed.json
var seedJSON []byte

// Seed is the employee and department data loaded into test databases.
type Seed struct {
	Departments []*mapper.Department `json:"departments"`
	Employees   []*mapper.Employee   `json:"employees"`
}

// DefaultSeed decodes the bundled seed data. Each call returns fresh values.
func DefaultSeed() (Seed, error) {
	var s Seed
	if err := json.Unmarshal(seedJSON, &s); err != nil {
		return Seed{}, err
	}
	return s, nil
}

// SeedDB inserts departments first, then employees.
func SeedDB(ctx context.Context, db bun.IDB, seed Seed) error {
	if len(seed.Departments) > 0 {
		if _, err := db.NewInsert().Model(&seed.Departments).Exec(ctx); err != nil {
			return err
		}
	}
	if len(seed.Employees) > 0 {
		if _, err := db.NewInsert().Model(&seed.Employees).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// OpenTestDB opens a private in-memory SQLite database with the schema and
// the default seed loaded. It is closed when the test ends.
func OpenTestDB(t testing.TB) *bun.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := mapper.Open(mapper.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := mapper.CreateSchema(ctx, db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	seed, err := DefaultSeed()
	if err != nil {
		t.Fatalf("failed to decode seed: %v", err)
	}
	if err := SeedDB(ctx, db, seed); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	return db
}

// NewCache builds a tiered cache from the default config after applying
// mutate, failing the test on error.
func NewCache(t testing.TB, mutate func(*cache.Config), opts ...tiered.Option) *tiered.Cache {
	t.Helper()

	cfg := cache.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := tiered.New(cfg, opts...)
	if err != nil {
		t.Fatalf("failed to build cache: %v", err)
	}
	return c
}

// LoadFixture reads a file relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON loads a JSON fixture into dest.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	if err := json.Unmarshal(LoadFixture(t, path), dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// WriteFixture writes data to path, creating parent directories.
func WriteFixture(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write fixture to %s: %v", path, err)
	}
}

// CompareWithGolden compares actual with the golden file at path. A missing
// golden file is created from actual.
func CompareWithGolden(t testing.TB, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Logf("golden file %s does not exist, creating it", path)
		WriteFixture(t, path, actual)
		return
	}
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// FixturePath joins filename onto the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath joins filename onto testdata/golden.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}
