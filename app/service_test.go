package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evroute/config"
	"github.com/kilianp07/evroute/core/factory"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Backend = "memory"
	cfg.SetDefaults()
	return cfg
}

func TestNewWithoutAuth(t *testing.T) {
	svc, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	assert.NotNil(t, svc.Planner())
	assert.Nil(t, svc.Accounts())
	require.NoError(t, svc.Store().Ping(context.Background()))
	_, ok := svc.Planner().Vehicles().Get("MG ZS EV")
	assert.True(t, ok)
}

func TestNewWithAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = "a-long-enough-secret"
	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	assert.NotNil(t, svc.Accounts())
}

func TestNewRejectsUnknownPlugin(t *testing.T) {
	cfg := testConfig()
	cfg.Notify.Publishers = []factory.ModuleConfig{{Type: "carrier-pigeon"}}
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewMissingVehiclesFile(t *testing.T) {
	cfg := testConfig()
	cfg.Energy.VehiclesFile = t.TempDir() + "/missing.yaml"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
