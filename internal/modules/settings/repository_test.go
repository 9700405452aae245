package settings

import (
	"testing"

	dbtesting "github.com/aristath/rebalancer/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, cleanup := dbtesting.NewTestDB(t, "config")
	t.Cleanup(cleanup)
	repo := NewRepository(db.Conn(), zerolog.Nop())
	require.NoError(t, repo.InitSchema())
	return repo
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	value, err := repo.Get("nonexistent")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestSetAndGet(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("trading_mode", "research", nil))

	value, err := repo.Get("trading_mode")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "research", *value)
}

func TestSetOverwrites(t *testing.T) {
	repo := newTestRepo(t)

	desc := "minimum trade size in EUR"
	require.NoError(t, repo.Set("min_trade_size", "500", &desc))
	require.NoError(t, repo.Set("min_trade_size", "750", nil))

	value, err := repo.Get("min_trade_size")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "750", *value)
}

func TestGetFloat(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.SetFloat("daily_pnl_full_halt_pct", 0.05))

	value, err := repo.GetFloat("daily_pnl_full_halt_pct", 0.10)
	require.NoError(t, err)
	assert.Equal(t, 0.05, value)

	missing, err := repo.GetFloat("absent", 0.10)
	require.NoError(t, err)
	assert.Equal(t, 0.10, missing)
}

func TestGetFloatUnparseableFallsBack(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("daily_pnl_full_halt_pct", "not-a-number", nil))

	value, err := repo.GetFloat("daily_pnl_full_halt_pct", 0.05)
	require.NoError(t, err)
	assert.Equal(t, 0.05, value)
}

func TestGetIntParsesFloatStrings(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("retry_count", "12.0", nil))

	value, err := repo.GetInt("retry_count", 3)
	require.NoError(t, err)
	assert.Equal(t, 12, value)
}

func TestGetBool(t *testing.T) {
	repo := newTestRepo(t)

	cases := []struct {
		stored   string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"anything", false},
	}

	for _, tc := range cases {
		require.NoError(t, repo.Set("trading_enabled", tc.stored, nil))
		value, err := repo.GetBool("trading_enabled", false)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, value, "stored value %q", tc.stored)
	}

	missing, err := repo.GetBool("absent", true)
	require.NoError(t, err)
	assert.True(t, missing)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("temp", "1", nil))
	require.NoError(t, repo.Delete("temp"))

	value, err := repo.Get("temp")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestGetAll(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Set("a", "1", nil))
	require.NoError(t, repo.Set("b", "2", nil))

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)
}
