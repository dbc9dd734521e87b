// ABOUTME: Tests for the medication configuration provider.
// ABOUTME: Uses an in-memory badger store as the KV.
package medconfig

import (
	"testing"

	"github.com/harperreed/anchor/internal/models"
	"github.com/harperreed/anchor/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProvider(t *testing.T) (*Provider, storage.KV) {
	t.Helper()
	kv, err := storage.OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return New(kv), kv
}

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	p, _ := setupProvider(t)
	cfg, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMedications(), cfg)
}

func TestSaveThenLoad(t *testing.T) {
	p, kv := setupProvider(t)
	cfg := models.MedicationConfig{
		Daytime: []models.Medication{{ID: "a", Name: "A", TimesPerDay: 3}},
		Evening: []models.Medication{{ID: "b", Name: "B"}},
	}
	require.NoError(t, p.Save(cfg))

	fresh := New(kv)
	got, err := fresh.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Daytime, got.Daytime)
	assert.Equal(t, cfg.Evening, got.Evening)
}

func TestCurrentIsACopy(t *testing.T) {
	p, _ := setupProvider(t)
	_, err := p.Load()
	require.NoError(t, err)

	cfg := p.Current()
	cfg.Daytime[0].Name = "changed"
	assert.NotEqual(t, "changed", p.Current().Daytime[0].Name)
}

func TestSubscribe(t *testing.T) {
	p, _ := setupProvider(t)

	var got []models.MedicationConfig
	cancel := p.Subscribe(func(cfg models.MedicationConfig) { got = append(got, cfg) })

	cfg := models.DefaultMedications()
	cfg.Evening = cfg.Evening[:1]
	require.NoError(t, p.Save(cfg))
	require.Len(t, got, 1)
	assert.Len(t, got[0].Evening, 1)

	cancel()
	cancel()
	require.NoError(t, p.Save(models.DefaultMedications()))
	assert.Len(t, got, 1, "no notification after cancel")
}

func TestLoadRejectsCorruptConfig(t *testing.T) {
	p, kv := setupProvider(t)
	require.NoError(t, kv.Set(storage.MedicationsConfigKey, []byte("{not json")))
	_, err := p.Load()
	assert.Error(t, err)
}

func TestDose(t *testing.T) {
	p, _ := setupProvider(t)
	_, err := p.Load()
	require.NoError(t, err)

	med, err := p.Dose("xanax-xr", 2)
	require.NoError(t, err)
	assert.Equal(t, "Xanax XR", med.Name)

	_, err = p.Dose("lithium", 1)
	assert.NoError(t, err)
	_, err = p.Dose("lithium", 2)
	assert.Error(t, err, "evening meds have one slot")
	_, err = p.Dose("nope", 1)
	assert.ErrorIs(t, err, ErrUnknownMedication)
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	p, kv := setupProvider(t)
	var notified int
	p.Subscribe(func(models.MedicationConfig) { notified++ })

	err := p.Save(models.MedicationConfig{Evening: []models.Medication{{ID: "x"}}})
	require.Error(t, err)
	assert.Zero(t, notified)

	_, err = kv.Get(storage.MedicationsConfigKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
