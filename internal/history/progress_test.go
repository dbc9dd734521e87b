// ABOUTME: Tests for daily progress counting and messages.
// ABOUTME: Exercises each activity type's completion rule.
package history

import (
	"testing"

	"github.com/harperreed/anchor/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	acts := models.DefaultActivities()

	p := ComputeProgress(acts, nil)
	assert.Equal(t, 10, p.Required, "notes is optional")
	assert.Equal(t, 0, p.Completed)
	assert.Equal(t, 0, p.Percent)
	assert.Equal(t, "Ready to start your day?", p.Message)

	entries := map[string]models.EntryValue{
		"sleep-quality": {Value: models.NumberValue(0)},
		"stretch":       {Value: models.BoolValue(false)},
		"exercise":      {Value: models.TextValue("   ")},
		"mood":          {Value: models.NumberValue(0)},
		"notes":         {Value: models.TextValue("ignored")},
	}
	p = ComputeProgress(acts, entries)
	assert.Equal(t, 1, p.Completed, "only mood counts")
	assert.Equal(t, 10, p.Percent)
	assert.Equal(t, "You're making progress!", p.Message)

	entries["sleep-quality"] = models.EntryValue{Value: models.NumberValue(4)}
	entries["stretch"] = models.EntryValue{Value: models.BoolValue(true)}
	entries["exercise"] = models.EntryValue{Value: models.TextValue("walk")}
	entries["sleep-hours"] = models.EntryValue{Value: models.NumberValue(7)}
	p = ComputeProgress(acts, entries)
	assert.Equal(t, 5, p.Completed)
	assert.Equal(t, "Almost there, keep going!", p.Message)
}

func TestComputeProgressComplete(t *testing.T) {
	acts := []models.Activity{
		{ID: "a", Type: models.ActivityCheckbox},
		{ID: "b", Type: models.ActivityScale},
		{ID: "c", Type: models.ActivityText, Config: models.ActivityConfig{Optional: true}},
	}
	p := ComputeProgress(acts, map[string]models.EntryValue{
		"a": {Value: models.BoolValue(true)},
		"b": {Value: models.NumberValue(-5)},
	})
	assert.Equal(t, 100, p.Percent)
	assert.Equal(t, "Amazing! You've completed everything.", p.Message)
	assert.Len(t, p.Items, 2)
}

func TestComputeProgressRounds(t *testing.T) {
	acts := []models.Activity{
		{ID: "a", Type: models.ActivityCheckbox},
		{ID: "b", Type: models.ActivityCheckbox},
		{ID: "c", Type: models.ActivityCheckbox},
	}
	p := ComputeProgress(acts, map[string]models.EntryValue{"a": {Value: models.BoolValue(true)}})
	assert.Equal(t, 33, p.Percent)
	p = ComputeProgress(acts, map[string]models.EntryValue{
		"a": {Value: models.BoolValue(true)},
		"b": {Value: models.BoolValue(true)},
	})
	assert.Equal(t, 67, p.Percent)
}

func TestComputeProgressNoRequired(t *testing.T) {
	p := ComputeProgress(nil, nil)
	assert.Equal(t, 0, p.Percent)
	assert.Equal(t, "Ready to start your day?", p.Message)
}
