package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	"github.com/pikoUsername/roblox-searcher-backend/internal/repository"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

var botColumns = []string{"id", "roblox_name", "token", "is_active", "is_selected"}

func TestPostgresBotTokenRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresBotTokenRepository(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		bot := &models.BotToken{RobloxName: "buyer1", Token: "_|WARNING:-DO-NOT-SHARE-THIS.abc", IsActive: true}

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_tokens`)).
			WithArgs(bot.RobloxName, bot.Token, bot.IsActive).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

		require.NoError(t, repo.Create(ctx, bot))
		assert.Equal(t, int64(1), bot.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate token", func(t *testing.T) {
		bot := &models.BotToken{RobloxName: "buyer2", Token: "_|WARNING:-DO-NOT-SHARE-THIS.abc", IsActive: true}

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_tokens`)).
			WithArgs(bot.RobloxName, bot.Token, bot.IsActive).
			WillReturnError(&pq.Error{Code: uniqueViolation})

		err := repo.Create(ctx, bot)
		assert.ErrorIs(t, err, pkgerrors.ErrTokenExists)
	})

	t.Run("empty token", func(t *testing.T) {
		err := repo.Create(ctx, &models.BotToken{RobloxName: "buyer3"})
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	})
}

func TestPostgresBotTokenRepository_SelectExclusive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresBotTokenRepository(db)
	ctx := context.Background()
	updateQuery := regexp.QuoteMeta(`UPDATE user_tokens SET is_selected = TRUE WHERE id = $1 AND is_active AND NOT is_selected RETURNING id, roblox_name, token, is_active, is_selected`)
	getQuery := regexp.QuoteMeta(`SELECT id, roblox_name, token, is_active, is_selected FROM user_tokens WHERE id = $1`)

	t.Run("wins the flag", func(t *testing.T) {
		mock.ExpectQuery(updateQuery).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(botColumns).AddRow(int64(1), "buyer1", "tok", true, true))

		bot, err := repo.SelectExclusive(ctx, 1)
		require.NoError(t, err)
		assert.True(t, bot.IsSelected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already selected", func(t *testing.T) {
		mock.ExpectQuery(updateQuery).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(botColumns))
		mock.ExpectQuery(getQuery).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(botColumns).AddRow(int64(1), "buyer1", "tok", true, true))

		_, err := repo.SelectExclusive(ctx, 1)
		assert.ErrorIs(t, err, pkgerrors.ErrBotAlreadySelected)
	})

	t.Run("not active", func(t *testing.T) {
		mock.ExpectQuery(updateQuery).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows(botColumns))
		mock.ExpectQuery(getQuery).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows(botColumns).AddRow(int64(2), "buyer2", "tok2", false, false))

		_, err := repo.SelectExclusive(ctx, 2)
		assert.ErrorIs(t, err, pkgerrors.ErrBotNotActive)
	})

	t.Run("unknown id", func(t *testing.T) {
		mock.ExpectQuery(updateQuery).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(botColumns))
		mock.ExpectQuery(getQuery).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(botColumns))

		_, err := repo.SelectExclusive(ctx, 3)
		assert.ErrorIs(t, err, pkgerrors.ErrBotNotFound)
	})
}

func TestPostgresBotTokenRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresBotTokenRepository(db)
	ctx := context.Background()

	t.Run("partial update leaves other columns alone", func(t *testing.T) {
		active := false

		mock.ExpectQuery(`UPDATE user_tokens`).
			WithArgs(int64(1), nil, nil, false, nil).
			WillReturnRows(sqlmock.NewRows(botColumns).AddRow(int64(1), "buyer1", "tok", false, false))

		bot, err := repo.Update(ctx, 1, repository.BotTokenUpdate{IsActive: &active})
		require.NoError(t, err)
		assert.False(t, bot.IsActive)
		assert.Equal(t, "buyer1", bot.RobloxName)
	})

	t.Run("unknown id", func(t *testing.T) {
		name := "renamed"

		mock.ExpectQuery(`UPDATE user_tokens`).
			WithArgs(int64(9), "renamed", nil, nil, nil).
			WillReturnRows(sqlmock.NewRows(botColumns))

		_, err := repo.Update(ctx, 9, repository.BotTokenUpdate{RobloxName: &name})
		assert.ErrorIs(t, err, pkgerrors.ErrBotNotFound)
	})
}

func TestPostgresBotTokenRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresBotTokenRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, roblox_name, token, is_active, is_selected FROM user_tokens ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows(botColumns).
			AddRow(int64(1), "buyer1", "tok1", true, false).
			AddRow(int64(2), "buyer2", "tok2", false, false))

	bots, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, bots, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
