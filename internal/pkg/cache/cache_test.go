package cache

import (
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	os.Setenv("CACHE_HOST", mr.Host())
	os.Setenv("CACHE_PORT", mr.Port())
	t.Cleanup(func() {
		os.Unsetenv("CACHE_HOST")
		os.Unsetenv("CACHE_PORT")
		client = nil
	})
	SetupCache()
}

func TestCacheSetGetDelete(t *testing.T) {
	setupTestCache(t)

	require.NoError(t, Set("tokens:status:user:1:free", `{"available_tokens":20}`, time.Minute))

	val, err := Get("tokens:status:user:1:free")
	require.NoError(t, err)
	assert.Equal(t, `{"available_tokens":20}`, val)

	require.NoError(t, Delete("tokens:status:user:1:free"))

	_, err = Get("tokens:status:user:1:free")
	assert.True(t, IsNotFound(err))
}
