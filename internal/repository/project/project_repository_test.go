package project

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-visionai/internal/domain"
)

func newRepo(t *testing.T) ProjectRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Project{}, &domain.Chat{}, &domain.Message{}))
	return NewProjectRepository(db)
}

func TestCreateAndFind(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	p, err := repo.Create(ctx, &domain.Project{UserID: "u1", Title: "  Research  "})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Research", p.Title)

	found, err := repo.FindByIDAndUserID(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Research", found.Title)

	_, err = repo.FindByIDAndUserID(ctx, p.ID, "u2")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestCreateRequiresTitle(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Create(context.Background(), &domain.Project{UserID: "u1", Title: "   "})
	assert.Error(t, err)
}

func TestFindByUserID(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b"} {
		_, err := repo.Create(ctx, &domain.Project{UserID: "u1", Title: title})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &domain.Project{UserID: "u2", Title: "c"})
	require.NoError(t, err)

	list, err := repo.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
