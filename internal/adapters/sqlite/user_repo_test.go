package sqlite_test

import (
	"context"
	"testing"

	"github.com/caburj/kwartrack/internal/adapters/sqlite"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "USER-001" {
		t.Errorf("expected USER-001, got %s", id)
	}

	if err := repo.Create(ctx, &secondary.UserRecord{ID: id, Name: "ana", Email: "ana@example.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byID, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Name != "ana" || byID.Email != "ana@example.com" {
		t.Errorf("unexpected user: %+v", byID)
	}

	byName, err := repo.GetByName(ctx, "ana")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if byName.ID != id {
		t.Errorf("expected %s, got %s", id, byName.ID)
	}

	next, _ := repo.GetNextID(ctx)
	if next != "USER-002" {
		t.Errorf("expected USER-002, got %s", next)
	}
}

func TestUserRepository_DuplicateName(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "USER-001", "ana")

	if err := repo.Create(ctx, &secondary.UserRecord{ID: "USER-002", Name: "ana"}); err == nil {
		t.Error("expected error for duplicate name")
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewUserRepository(db)

	if _, err := repo.GetByID(context.Background(), "USER-999"); err == nil {
		t.Error("expected error for missing user")
	}
	if _, err := repo.GetByName(context.Background(), "nobody"); err == nil {
		t.Error("expected error for missing user")
	}
}

func TestUserRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewUserRepository(db)

	seedUser(t, db, "USER-001", "zed")
	seedUser(t, db, "USER-002", "amy")

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Name != "amy" {
		t.Errorf("expected users ordered by name, got %s first", users[0].Name)
	}
}
