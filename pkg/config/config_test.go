package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageDriverMemory, cfg.App.StorageDriver)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, "RETT_INV", cfg.Ledger.AdjustmentCausale)
	assert.False(t, cfg.Ledger.DefaultAllowNegative)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LEDGER_MAX_RETRIES", "9")
	t.Setenv("LEDGER_DEFAULT_ALLOW_NEGATIVE", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Ledger.MaxRetries)
	assert.True(t, cfg.Ledger.DefaultAllowNegative)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_DriverDesconocido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/w", DBName: "magazzino", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fw@db:5432/magazzino?sslmode=disable", c.DSN())
}

func TestLoad_MaxConnsFueraDeRango(t *testing.T) {
	for _, v := range []string{"0", "-3", "1001", "4294967296"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("STORAGE_DRIVER", "memory")
			t.Setenv("DB_MAX_CONNS", v)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MaxConnsValido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DB_MAX_CONNS", "40")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.DB.MaxConns)
}
