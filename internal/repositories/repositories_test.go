package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestSlots(t *testing.T) {
	impls := map[string]func(t *testing.T) Slots{
		"SlotRepository": func(t *testing.T) Slots { return NewSlotRepository(setupTestDB(t)) },
		"MemorySlots":    func(t *testing.T) Slots { return NewMemorySlots(nil) },
	}

	for name, build := range impls {
		t.Run(name, func(t *testing.T) {
			t.Run("Get Missing Slot", func(t *testing.T) {
				slots := build(t)
				value, ok, err := slots.Get(CredentialSlot)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if ok || value != "" {
					t.Errorf("expected unset slot, got %q (%v)", value, ok)
				}
			})

			t.Run("Set Then Get", func(t *testing.T) {
				slots := build(t)
				if err := slots.Set(CredentialSlot, "token-1"); err != nil {
					t.Fatalf("failed to set slot: %v", err)
				}
				if err := slots.Set(CredentialSlot, "token-2"); err != nil {
					t.Fatalf("failed to overwrite slot: %v", err)
				}

				value, ok, err := slots.Get(CredentialSlot)
				if err != nil || !ok {
					t.Fatalf("expected set slot, got ok=%v err=%v", ok, err)
				}
				if value != "token-2" {
					t.Errorf("expected token-2, got %s", value)
				}
			})

			t.Run("Slots Are Independent", func(t *testing.T) {
				slots := build(t)
				slots.Set(CredentialSlot, "token")
				slots.Set(ThemeSlot, "dark")

				if err := slots.Delete(CredentialSlot); err != nil {
					t.Fatalf("failed to delete slot: %v", err)
				}

				if _, ok, _ := slots.Get(CredentialSlot); ok {
					t.Error("expected credential to be cleared")
				}
				if theme, ok, _ := slots.Get(ThemeSlot); !ok || theme != "dark" {
					t.Errorf("expected theme to survive, got %q", theme)
				}
			})

			t.Run("Delete Missing Slot", func(t *testing.T) {
				if err := build(t).Delete(ThemeSlot); err != nil {
					t.Errorf("expected no error, got %v", err)
				}
			})

			t.Run("Empty Key", func(t *testing.T) {
				slots := build(t)
				if err := slots.Set("", "x"); err == nil {
					t.Error("expected error for empty key")
				}
				if _, _, err := slots.Get(""); err == nil {
					t.Error("expected error for empty key")
				}
			})
		})
	}

	t.Run("SlotRepository UpdatedAt", func(t *testing.T) {
		repo := NewSlotRepository(setupTestDB(t))
		if _, err := repo.UpdatedAt(ThemeSlot); err == nil {
			t.Error("expected error for missing slot")
		}

		before := time.Now().Add(-time.Second)
		repo.Set(ThemeSlot, "light")
		updated, err := repo.UpdatedAt(ThemeSlot)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.Before(before) {
			t.Errorf("expected recent timestamp, got %v", updated)
		}
	})

	t.Run("MemorySlots Seeded", func(t *testing.T) {
		seed := map[string]string{CredentialSlot: "abc"}
		slots := NewMemorySlots(seed)
		seed[CredentialSlot] = "mutated"

		if v, _, _ := slots.Get(CredentialSlot); v != "abc" {
			t.Errorf("expected seed to be copied, got %s", v)
		}
	})
}

func TestSearchHistoryRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		repo := NewSearchHistoryRepository(setupTestDB(t))
		record := models.NewSearchRecord(models.Criteria{Query: "matrix", Genre: "28", SortBy: "title.asc"}, 12)

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}
		if record.ID() == "" {
			t.Fatal("expected ID to be set after creation")
		}

		got, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if got.Criteria.Genre != "28" || got.Criteria.SortBy != "title.asc" || got.ResultCount != 12 {
			t.Errorf("unexpected record %+v", got)
		}
		if got.Criteria.Query != "" {
			t.Error("expected free-text query not to be stored")
		}
	})

	t.Run("Create Validation", func(t *testing.T) {
		repo := NewSearchHistoryRepository(setupTestDB(t))
		if err := repo.Create(models.NewSearchRecord(models.Criteria{SortBy: "bogus"}, 1)); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("List Newest First", func(t *testing.T) {
		repo := NewSearchHistoryRepository(setupTestDB(t))
		base := time.Now().Add(-time.Hour)
		for i, year := range []string{"1990", "2000", "2010"} {
			record := models.NewSearchRecord(models.Criteria{Year: year}, i)
			record.SetCreatedAt(base.Add(time.Duration(i) * time.Minute))
			if err := repo.Create(record); err != nil {
				t.Fatalf("failed to create record: %v", err)
			}
		}

		all, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 3 || all[0].Criteria.Year != "2010" || all[2].Criteria.Year != "1990" {
			t.Errorf("unexpected order: %v, %v, %v", all[0].Criteria, all[1].Criteria, all[2].Criteria)
		}

		limited, err := repo.List(2)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 records, got %d", len(limited))
		}
	})

	t.Run("Delete And Clear", func(t *testing.T) {
		repo := NewSearchHistoryRepository(setupTestDB(t))
		record := models.NewSearchRecord(models.Criteria{}, 0)
		repo.Create(record)
		repo.Create(models.NewSearchRecord(models.Criteria{}, 0))

		if err := repo.Delete(record.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if err := repo.Delete(record.ID()); err == nil {
			t.Error("expected error deleting missing record")
		}
		if _, err := repo.Get(record.ID()); err == nil {
			t.Error("expected deleted record to be gone")
		}

		if err := repo.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if all, _ := repo.List(0); len(all) != 0 {
			t.Errorf("expected empty history, got %d", len(all))
		}
	})
}
