// ABOUTME: Shared medication configuration provider backed by a KV store.
// ABOUTME: One loaded copy, explicit Save, and change subscriptions for every consumer.
package medconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/harperreed/anchor/internal/logger"
	"github.com/harperreed/anchor/internal/models"
	"github.com/harperreed/anchor/internal/storage"
)

// Provider holds the current medication configuration.
type Provider struct {
	kv storage.KV

	mu      sync.RWMutex
	current models.MedicationConfig
	nextID  int
	subs    map[int]func(models.MedicationConfig)
}

// New returns a provider over kv. Call Load before Current.
func New(kv storage.KV) *Provider {
	return &Provider{
		kv:      kv,
		current: models.DefaultMedications(),
		subs:    make(map[int]func(models.MedicationConfig)),
	}
}

// Load reads the saved configuration, falling back to the defaults.
func (p *Provider) Load() (models.MedicationConfig, error) {
	cfg := models.DefaultMedications()
	data, err := p.kv.Get(storage.MedicationsConfigKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return cfg, fmt.Errorf("read medication config: %w", err)
	default:
		var saved models.MedicationConfig
		if err := json.Unmarshal(data, &saved); err != nil {
			return cfg, fmt.Errorf("decode medication config: %w", err)
		}
		cfg = saved
	}

	p.mu.Lock()
	p.current = cfg
	p.mu.Unlock()
	return cfg.Clone(), nil
}

// Current returns a copy of the configuration in use.
func (p *Provider) Current() models.MedicationConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.Clone()
}

// Save validates and persists cfg, then notifies subscribers.
func (p *Provider) Save(cfg models.MedicationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode medication config: %w", err)
	}
	if err := p.kv.Set(storage.MedicationsConfigKey, data); err != nil {
		return fmt.Errorf("write medication config: %w", err)
	}

	p.mu.Lock()
	p.current = cfg.Clone()
	subs := make([]func(models.MedicationConfig), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	logger.Info("medication config saved", "daytime", len(cfg.Daytime), "evening", len(cfg.Evening))
	for _, fn := range subs {
		fn(cfg.Clone())
	}
	return nil
}

// ErrUnknownMedication is returned for an id not in the configuration.
var ErrUnknownMedication = errors.New("unknown medication")

// Dose returns the medication for id after checking dose is one of its slots.
func (p *Provider) Dose(id string, dose int) (models.Medication, error) {
	med, ok := p.Current().Find(id)
	if !ok {
		return models.Medication{}, fmt.Errorf("%w: %s", ErrUnknownMedication, id)
	}
	if dose < 1 || dose > med.Doses() {
		return models.Medication{}, fmt.Errorf("%s has %d dose(s) per day, got dose %d", med.Name, med.Doses(), dose)
	}
	return med, nil
}

// Subscribe registers fn for every Save. The returned func unregisters it.
func (p *Provider) Subscribe(fn func(models.MedicationConfig)) (cancel func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}
