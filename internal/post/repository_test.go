package post_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mediafeed/service/internal/db"
	"github.com/mediafeed/service/internal/post"
)

// newTestPool connects to the database named by TEST_DATABASE_URL and applies
// migrations. Tests using it are skipped when the variable is unset.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	if err := db.Migrate(dsn, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := db.Connect(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestPgxRepository(t *testing.T) {
	pool := newTestPool(t)
	repo := post.NewRepository(pool)
	ctx := context.Background()
	owner := uuid.NewString()

	var created []*post.Post
	uploads := []struct{ name, contentType string }{
		{"first.png", "image/png"},
		{"second.mp4", "video/mp4"},
		{"third.png", "image/png"},
	}
	for _, u := range uploads {
		name := u.name
		p := &post.Post{
			UserID:   owner,
			Caption:  "Tom & Jerry's <day>",
			URL:      "https://cdn.test/" + name,
			FileType: post.ClassifyFileType(u.contentType),
			FileName: name,
		}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
		if p.ID == "" || p.CreatedAt.IsZero() {
			t.Fatalf("Create did not fill generated columns: %+v", p)
		}
		created = append(created, p)
	}
	t.Cleanup(func() {
		for _, p := range created {
			_ = repo.Delete(context.Background(), p.ID)
		}
	})

	got, err := repo.GetByID(ctx, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UserID != owner || got.Caption != "Tom & Jerry's <day>" || got.FileName != "first.png" {
		t.Errorf("GetByID = %+v", got)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Fatalf("ListAll not newest first at %d: %v after %v", i, all[i].CreatedAt, all[i-1].CreatedAt)
		}
	}
	seen := 0
	for _, p := range all {
		if p.UserID == owner {
			seen++
		}
	}
	if seen != len(created) {
		t.Errorf("ListAll returned %d of %d created posts", seen, len(created))
	}

	if err := repo.Delete(ctx, created[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, created[0].ID); !errors.Is(err, post.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByID(ctx, created[0].ID); !errors.Is(err, post.ErrNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrNotFound", err)
	}
}
