// ABOUTME: Medication definitions and the standing daytime/evening configuration.
// ABOUTME: Daytime meds carry several doses per day; evening meds share one batch time.
package models

import (
	"errors"
	"fmt"
)

// Medication is one standing medication in the configuration.
type Medication struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Dosage           string   `json:"dosage,omitempty" yaml:"dosage,omitempty"`
	DosageValue      *float64 `json:"dosage_value,omitempty" yaml:"dosage_value,omitempty"`
	DosageUnit       string   `json:"dosage_unit,omitempty" yaml:"dosage_unit,omitempty"`
	TimesPerDay      int      `json:"times_per_day,omitempty" yaml:"times_per_day,omitempty"`
	DosageAdjustable bool     `json:"dosage_adjustable" yaml:"dosage_adjustable"`
}

// Doses returns the number of dose slots per day. Evening meds have one.
func (m Medication) Doses() int {
	if m.TimesPerDay < 1 {
		return 1
	}
	return m.TimesPerDay
}

// MedicationConfig is the standing medication list, split by category.
type MedicationConfig struct {
	Daytime []Medication `json:"daytime" yaml:"daytime"`
	Evening []Medication `json:"evening" yaml:"evening"`
}

// Find returns the medication with id from either category.
func (c MedicationConfig) Find(id string) (Medication, bool) {
	for _, m := range c.Daytime {
		if m.ID == id {
			return m, true
		}
	}
	for _, m := range c.Evening {
		if m.ID == id {
			return m, true
		}
	}
	return Medication{}, false
}

// IsDaytime reports whether id is a configured daytime medication.
func (c MedicationConfig) IsDaytime(id string) bool {
	for _, m := range c.Daytime {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate shared config.
func (c MedicationConfig) Clone() MedicationConfig {
	out := MedicationConfig{
		Daytime: make([]Medication, len(c.Daytime)),
		Evening: make([]Medication, len(c.Evening)),
	}
	copy(out.Daytime, c.Daytime)
	copy(out.Evening, c.Evening)
	for i := range out.Daytime {
		out.Daytime[i].DosageValue = cloneFloat(out.Daytime[i].DosageValue)
	}
	for i := range out.Evening {
		out.Evening[i].DosageValue = cloneFloat(out.Evening[i].DosageValue)
	}
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// DefaultMedications returns the configuration used until one is saved.
func DefaultMedications() MedicationConfig {
	return MedicationConfig{
		Daytime: []Medication{
			{ID: "propranolol", Name: "Propranolol", Dosage: "20mg", DosageValue: floatPtr(20), DosageUnit: "mg", TimesPerDay: 2},
			{ID: "xanax-xr", Name: "Xanax XR", Dosage: "2mg", DosageValue: floatPtr(2), DosageUnit: "mg", TimesPerDay: 2},
		},
		Evening: []Medication{
			{ID: "rexulti", Name: "Rexulti", Dosage: "2mg", DosageValue: floatPtr(2), DosageUnit: "mg", DosageAdjustable: true},
			{ID: "lithium", Name: "Lithium", Dosage: "1050mg", DosageValue: floatPtr(1050), DosageUnit: "mg", DosageAdjustable: true},
			{ID: "lamictal", Name: "Lamictal", Dosage: "200mg", DosageValue: floatPtr(200), DosageUnit: "mg"},
			{ID: "fish-oil", Name: "Fish Oil"},
			{ID: "multi-vitamin", Name: "Multi Vitamin"},
		},
	}
}

// Validate checks that every medication has a unique id and a name.
func (c MedicationConfig) Validate() error {
	seen := make(map[string]bool)
	for _, group := range [][]Medication{c.Daytime, c.Evening} {
		for _, m := range group {
			if m.ID == "" {
				return errors.New("medication id is required")
			}
			if m.Name == "" {
				return fmt.Errorf("medication %s has no name", m.ID)
			}
			if seen[m.ID] {
				return fmt.Errorf("duplicate medication id %s", m.ID)
			}
			seen[m.ID] = true
		}
	}
	return nil
}
