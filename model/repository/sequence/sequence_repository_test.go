package sequence

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"gaugetrack.GO/core/faults"
	entity "gaugetrack.GO/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&entity.IdentifierSequence{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAllocate_Monotonic(t *testing.T) {
	db := testDB(t)
	repo := NewSequenceRepository(db)
	if _, err := repo.Seed([]entity.IdentifierSequence{{CategoryID: 1, SubType: "thread_plug", Prefix: "SP"}}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	want := []string{"SP0001", "SP0002", "SP0003"}
	for _, w := range want {
		var got string
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			got, err = repo.Allocate(tx, 1, "thread_plug")
			return err
		})
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if got != w {
			t.Errorf("Allocate = %q, want %q", got, w)
		}
	}
}

func TestAllocate_RollbackDoesNotBurnValues(t *testing.T) {
	db := testDB(t)
	repo := NewSequenceRepository(db)
	if _, err := repo.Seed([]entity.IdentifierSequence{{CategoryID: 1, SubType: "thread_plug", Prefix: "SP"}}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	sentinel := errors.New("abort")
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := repo.Allocate(tx, 1, "thread_plug"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}

	var got string
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		got, err = repo.Allocate(tx, 1, "thread_plug")
		return err
	})
	if err != nil {
		t.Fatalf("Allocate after rollback: %v", err)
	}
	if got != "SP0001" {
		t.Errorf("Allocate = %q, want SP0001 (rolled-back value reissued)", got)
	}
}

func TestAllocate_MissingSequenceIsConfigurationError(t *testing.T) {
	db := testDB(t)
	repo := NewSequenceRepository(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.Allocate(tx, 42, "thread_ring")
		return err
	})
	var cfg *faults.ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
}

func TestFormatIdentifier(t *testing.T) {
	cases := []struct {
		prefix string
		value  uint64
		want   string
	}{
		{"SP", 1, "SP0001"},
		{"SP", 17, "SP0017"},
		{"SR", 9999, "SR9999"},
		{"SR", 10000, "SR10000"}, // widens, never wraps
		{"NT", 123456, "NT123456"},
	}
	for _, c := range cases {
		if got := FormatIdentifier(c.prefix, c.value); got != c.want {
			t.Errorf("FormatIdentifier(%q, %d) = %q, want %q", c.prefix, c.value, got, c.want)
		}
	}
}

func TestSeed_DoesNotResetCounters(t *testing.T) {
	db := testDB(t)
	repo := NewSequenceRepository(db)

	n, err := repo.Seed([]entity.IdentifierSequence{{CategoryID: 1, SubType: "thread_plug", Prefix: "SP", NextValue: 50}})
	if err != nil || n != 1 {
		t.Fatalf("Seed = (%d, %v), want (1, nil)", n, err)
	}
	// Same (category, sub_type) again: must be a no-op
	n, err = repo.Seed([]entity.IdentifierSequence{{CategoryID: 1, SubType: "thread_plug", Prefix: "SP", NextValue: 1}})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 0 {
		t.Errorf("Seed created %d rows, want 0", n)
	}

	var got string
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		got, err = repo.Allocate(tx, 1, "thread_plug")
		return err
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != "SP0050" {
		t.Errorf("Allocate = %q, want SP0050", got)
	}
}
