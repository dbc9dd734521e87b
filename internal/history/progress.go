// ABOUTME: Daily progress across the non-optional activities.
// ABOUTME: Produces a rounded percentage and an encouragement message.
package history

import (
	"math"

	"github.com/harperreed/anchor/internal/models"
)

// ProgressItem is one required activity and whether it is answered.
type ProgressItem struct {
	ActivityID string `json:"activity_id"`
	Name       string `json:"name"`
	Complete   bool   `json:"complete"`
}

// Progress summarizes how much of the day's tracking is done.
type Progress struct {
	Completed int            `json:"completed"`
	Required  int            `json:"required"`
	Percent   int            `json:"percent"`
	Message   string         `json:"message"`
	Items     []ProgressItem `json:"items"`
}

// ComputeProgress counts required activities answered in entries.
func ComputeProgress(activities []models.Activity, entries map[string]models.EntryValue) Progress {
	var p Progress
	for _, a := range activities {
		if a.Config.Optional {
			continue
		}
		var v *models.Value
		if ev, ok := entries[a.ID]; ok {
			v = &ev.Value
		}
		done := a.IsComplete(v)
		p.Items = append(p.Items, ProgressItem{ActivityID: a.ID, Name: a.Name, Complete: done})
		p.Required++
		if done {
			p.Completed++
		}
	}
	if p.Required > 0 {
		p.Percent = int(math.Round(float64(p.Completed) / float64(p.Required) * 100))
	}
	p.Message = progressMessage(p.Percent)
	return p
}

func progressMessage(percent int) string {
	switch {
	case percent == 0:
		return "Ready to start your day?"
	case percent < 50:
		return "You're making progress!"
	case percent < 100:
		return "Almost there, keep going!"
	default:
		return "Amazing! You've completed everything."
	}
}
