package message

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-visionai/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Project{}, &domain.Chat{}, &domain.Message{}))
	return db
}

func text(s string) domain.Parts { return domain.Parts{domain.TextPart{Text: s}} }

func TestCreateKeepsSaveOrderWithinSameTick(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&domain.Chat{ID: "c1", UserID: "u1", Title: "t"}).Error)

	frozen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &gormMessageRepository{db: db, now: func() time.Time { return frozen }}
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.NewMessage("c1", domain.RoleUser, text("question")))
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.NewMessage("c1", domain.RoleAssistant, text("answer")))
	require.NoError(t, err)

	msgs, err := repo.FindByChatID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "answer", msgs[1].PartList().Text())
	assert.True(t, msgs[1].CreatedAt.After(msgs[0].CreatedAt))
}

func TestCreateRejectsInvalidMessages(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.NewMessage("c1", domain.RoleUser, nil))
	assert.ErrorIs(t, err, domain.ErrEmptyParts)

	_, err = repo.Create(ctx, domain.NewMessage("", domain.RoleUser, text("x")))
	assert.Error(t, err)

	bad := domain.Parts{domain.ToolPart{ToolName: "webSearch", ToolCallID: "c", State: domain.ToolStateOutputError}}
	_, err = repo.Create(ctx, domain.NewMessage("c1", domain.RoleAssistant, bad))
	assert.ErrorIs(t, err, domain.ErrInvalidToolPart)
}

func TestPartsRoundTripThroughStorage(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&domain.Chat{ID: "c1", UserID: "u1", Title: "t"}).Error)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	parts := domain.Parts{
		domain.TextPart{Text: "<title>Cube</title>Here it is."},
		domain.ToolPart{ToolName: "generateImage", ToolCallID: "call_1", State: domain.ToolStateOutputAvailable,
			Input: []byte(`{"prompt":"a red cube"}`), Output: []byte(`{"success":true,"image":"https://cdn/x.png"}`)},
	}
	_, err := repo.Create(ctx, domain.NewMessage("c1", domain.RoleAssistant, parts))
	require.NoError(t, err)

	msgs, err := repo.FindByChatID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	got := msgs[0].PartList()
	require.Len(t, got, 2)
	tool, ok := got[1].(domain.ToolPart)
	require.True(t, ok)
	assert.Equal(t, "generateImage", tool.ToolName)
	assert.JSONEq(t, `{"success":true,"image":"https://cdn/x.png"}`, string(tool.Output))
}

func TestPaginationAndUserScope(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&domain.Chat{ID: "c1", UserID: "u1", Title: "t"}).Error)
	require.NoError(t, db.Create(&domain.Chat{ID: "c2", UserID: "u2", Title: "t"}).Error)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	for _, s := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, domain.NewMessage("c1", domain.RoleUser, text(s)))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, domain.NewMessage("c2", domain.RoleUser, text("other")))
	require.NoError(t, err)

	page, total, err := repo.FindByChatIDWithPagination(ctx, "c1", 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].PartList().Text())

	_, _, err = repo.FindByChatIDWithPagination(ctx, "c1", 0, 0)
	assert.Error(t, err)

	mine, err := repo.FindByUserID(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, "c", mine[0].PartList().Text())
}
