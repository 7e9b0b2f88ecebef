package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJenis(t *testing.T) {
	jenis, err := ParseJenis(" harian=1, wajib = 2 ,pokok=3")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"harian": 1, "wajib": 2, "pokok": 3}, jenis)

	empty, err := ParseJenis("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"harian", "harian=x", "=1", "harian=1,harian=2"} {
		_, err := ParseJenis(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadConfig_MemoryDriverDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("PGSQL_URL", "")
	t.Setenv("REPORT_CACHE_TTL", "not-a-duration")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "3-1300", cfg.ShuAccountCode)
	assert.Equal(t, "3-9000", cfg.OpeningBalanceCounterCode)
	assert.Equal(t, int64(2), cfg.ClientJenis["wajib"])
	assert.Equal(t, "10m0s", cfg.ReportCacheTTL.String())
}

func TestLoadConfig_Rejections(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("PGSQL_URL", "")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "")
	_, err = LoadConfig()
	assert.Error(t, err)
}
