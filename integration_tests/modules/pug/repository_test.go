package pugintegrationtests

import (
	"context"
	"errors"
	"testing"
	"time"

	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	pugdb "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/repositories"
	"github.com/Black-And-White-Club/pug-bot/integration_tests/testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// completedResult drafts a full game through the domain and returns its result.
func completedResult(t *testing.T, players []pugdomain.Player, completedAt time.Time) pugdomain.Result {
	t.Helper()

	game, err := pugdomain.NewGame(pugdomain.GameConfig{
		MaxMembers:  len(players),
		NumCaptains: 2,
		TeamSize:    len(players) / 2,
		Now:         func() time.Time { return completedAt },
	}, players...)
	require.NoError(t, err)

	_, err = game.AssignCaptains(players[:2])
	require.NoError(t, err)

	for game.Phase() == pugdomain.PhaseDrafting {
		captain, _ := game.CurrentCaptain()
		_, err := game.Pick(captain, game.AvailablePlayers()[0].Number)
		require.NoError(t, err)
	}

	res, err := game.Result()
	require.NoError(t, err)
	return res
}

func TestRepositoryRoundTrip(t *testing.T) {
	env := GetTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.Reset(ctx))

	gen := testutils.NewTestDataGenerator(42)
	repo := pugdb.NewRepository(env.DB)
	cfg := pugdomain.GameConfig{NumCaptains: 2, TeamSize: 3}

	res := completedResult(t, gen.GeneratePlayers(6), time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, repo.SaveMatch(ctx, nil, pugdb.NewMatch(res, cfg, "channel-1")))

	got, err := repo.GetMatch(ctx, nil, res.GameID)
	require.NoError(t, err)
	assert.Equal(t, "channel-1", got.ChannelID)
	assert.Equal(t, 3, got.TeamSize)
	assert.Len(t, got.Players, 6)

	if diff := cmp.Diff(res.Teams, got.Teams()); diff != "" {
		t.Errorf("teams mismatch (-want +got):\n%s", diff)
	}
}

func TestRepositoryGetUnknownMatch(t *testing.T) {
	env := GetTestEnv(t)
	ctx := context.Background()

	_, err := pugdb.NewRepository(env.DB).GetMatch(ctx, nil, uuid.New())
	assert.ErrorIs(t, err, pugdb.ErrNotFound)
}

func TestRepositoryListRecentMatches(t *testing.T) {
	env := GetTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.Reset(ctx))

	gen := testutils.NewTestDataGenerator(7)
	repo := pugdb.NewRepository(env.DB)
	cfg := pugdomain.GameConfig{NumCaptains: 2, TeamSize: 2}

	base := time.Now().UTC().Truncate(time.Second)
	var ids []uuid.UUID
	for i := range 3 {
		res := completedResult(t, gen.GeneratePlayers(4), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.SaveMatch(ctx, nil, pugdb.NewMatch(res, cfg, "")))
		ids = append(ids, res.GameID)
	}

	got, err := repo.ListRecentMatches(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[2], got[0].ID, "newest first")
	assert.Equal(t, ids[1], got[1].ID)
	assert.Len(t, got[0].Players, 4)
}

func TestRepositorySaveRollsBackWithTransaction(t *testing.T) {
	env := GetTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.Reset(ctx))

	gen := testutils.NewTestDataGenerator(99)
	repo := pugdb.NewRepository(env.DB)
	res := completedResult(t, gen.GeneratePlayers(4), time.Now().UTC())

	errAbort := errors.New("abort")
	err := env.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := repo.SaveMatch(ctx, tx, pugdb.NewMatch(res, pugdomain.GameConfig{NumCaptains: 2, TeamSize: 2}, "")); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	n, err := testutils.CountRows(ctx, env.DB, (*pugdb.Match)(nil))
	require.NoError(t, err)
	assert.Zero(t, n)
}
