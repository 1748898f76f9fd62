package vehicle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evroute/core/model"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	list := c.List()
	require.Len(t, list, 4)
	assert.Equal(t, "Hyundai Kona EV", list[0].Name)

	v, ok := c.Get("tata nexon ev")
	require.True(t, ok)
	assert.Equal(t, 30.0, v.UsableKWh)
	assert.Equal(t, 0.2, v.EfficiencyKWhPerKm)

	_, ok = c.Get("Tesla Model 3")
	assert.False(t, ok)
}

func TestPutRejectsInvalid(t *testing.T) {
	c := Default()
	assert.Error(t, c.Put(model.Vehicle{Name: "Broken", UsableKWh: 0, EfficiencyKWhPerKm: 0.2}))
	assert.Len(t, c.List(), 4)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.yaml")
	data := `vehicles:
  - name: "Tata Nexon EV"
    usable_kwh: 40.5
    efficiency_kwh_per_km: 0.21
    mass_kg: 1500
  - name: "BYD Atto 3"
    usable_kwh: 60
    efficiency_kwh_per_km: 0.16
    mass_kg: 1750
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.List(), 5)
	v, ok := c.Get("Tata Nexon EV")
	require.True(t, ok)
	assert.Equal(t, 40.5, v.UsableKWh)
	_, ok = c.Get("byd atto 3")
	assert.True(t, ok)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vehicles:\n  - name: \"\"\n    usable_kwh: 10\n"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
