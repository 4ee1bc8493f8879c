package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-tiered-cache/cache"
	"github.com/goliatone/go-tiered-cache/mapper"
)

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seed.Departments) != 3 {
		t.Errorf("expected 3 departments, got %d", len(seed.Departments))
	}
	if len(seed.Employees) != 5 {
		t.Fatalf("expected 5 employees, got %d", len(seed.Employees))
	}
	if seed.Employees[0].LastName != "Tom" || seed.Employees[0].DeptID != 1 {
		t.Errorf("unexpected first employee: %+v", seed.Employees[0])
	}

	again, _ := DefaultSeed()
	if again.Employees[0] == seed.Employees[0] {
		t.Error("expected a fresh seed per call")
	}
}

func TestOpenTestDB(t *testing.T) {
	db := OpenTestDB(t)
	ctx := context.Background()

	emps, err := db.NewSelect().Model((*mapper.Employee)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count employees: %v", err)
	}
	if emps != 5 {
		t.Errorf("expected 5 employees, got %d", emps)
	}

	depts, err := db.NewSelect().Model((*mapper.Department)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count departments: %v", err)
	}
	if depts != 3 {
		t.Errorf("expected 3 departments, got %d", depts)
	}
}

func TestOpenTestDB_Isolated(t *testing.T) {
	ctx := context.Background()
	a := OpenTestDB(t)
	b := OpenTestDB(t)

	if _, err := a.NewDelete().Model((*mapper.Employee)(nil)).Where("id = ?", 1).Exec(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}

	n, err := b.NewSelect().Model((*mapper.Employee)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 5 {
		t.Errorf("expected second database untouched, got %d employees", n)
	}
}

func TestNewCache(t *testing.T) {
	c := NewCache(t, func(cfg *cache.Config) { cfg.SharedEnabled = false })
	if c.Config().SharedEnabled {
		t.Error("expected mutate to be applied")
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	var seed Seed
	LoadFixtureJSON(t, FixturePath("seed.json"), &seed)

	if len(seed.Employees) != 5 {
		t.Errorf("expected 5 employees, got %d", len(seed.Employees))
	}
}

func TestCompareWithGolden_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "key.txt")
	content := []byte("emp::getEmpById::1")

	CompareWithGolden(t, path, content)

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read created golden file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("expected %q, got %q", content, got)
	}

	CompareWithGolden(t, path, content)
}

func TestPaths(t *testing.T) {
	if got := FixturePath("seed.json"); got != filepath.Join("testdata", "seed.json") {
		t.Errorf("unexpected fixture path %q", got)
	}
	if got := GoldenPath("keys.txt"); got != filepath.Join("testdata", "golden", "keys.txt") {
		t.Errorf("unexpected golden path %q", got)
	}
}
