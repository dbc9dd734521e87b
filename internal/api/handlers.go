// ABOUTME: gin handlers for days, entries, doses, evening time, and extra meds.
// ABOUTME: Errors map to 400 for bad input, 404 for unknown ids, 500 otherwise.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/anchor/internal/history"
	"github.com/harperreed/anchor/internal/medconfig"
	"github.com/harperreed/anchor/internal/models"
	"github.com/harperreed/anchor/internal/tracker"
)

// errBadRequest marks input errors that are not sentinel-typed.
var errBadRequest = errors.New("bad request")

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, models.ErrInvalidDateKey):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnknownActivity),
		errors.Is(err, medconfig.ErrUnknownMedication),
		errors.Is(err, tracker.ErrExtraMedNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (h *Handler) date(c *gin.Context) (models.DateKey, bool) {
	date, err := models.ResolveDate(c.Param("date"), h.tracker.Now())
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return date, true
}

// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "remote": h.tracker.IsRemote()})
}

// GET /api/activities
func (h *Handler) ListActivities(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Activities())
}

// GET /api/medications
func (h *Handler) ListMedications(c *gin.Context) {
	c.JSON(http.StatusOK, h.meds.Current())
}

// PUT /api/medications
func (h *Handler) SetMedications(c *gin.Context) {
	var cfg models.MedicationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if err := cfg.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.meds.Save(cfg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.meds.Current())
}

// GET /api/days/:date
func (h *Handler) GetDay(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}
	day, err := h.tracker.Load(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"view":     history.Build(day, h.tracker.Activities(), h.meds.Current()),
		"progress": history.ComputeProgress(h.tracker.Activities(), day.Entries),
	})
}

// DELETE /api/days/:date
func (h *Handler) ResetDay(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}
	if err := h.tracker.ResetDay(c.Request.Context(), date); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/days/:date/entries/:activity  body: {"value": <bool|number|string|object>}
func (h *Handler) SetEntry(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}
	var req struct {
		Value models.Value `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if !req.Value.IsValid() {
		badRequest(c, "value is required")
		return
	}

	act, err := models.FindActivity(h.tracker.Activities(), c.Param("activity"))
	if err != nil {
		respondError(c, err)
		return
	}
	value := req.Value
	// text is coerced by render type so "yes" or "7" work for any activity
	if s, isText := value.Text(); isText {
		if value, err = act.Coerce(s); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	entry, err := h.tracker.SetEntry(c.Request.Context(), date, act.ID, value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) dose(c *gin.Context) (models.DateKey, models.Medication, int, bool) {
	date, ok := h.date(c)
	if !ok {
		return "", models.Medication{}, 0, false
	}
	n, err := strconv.Atoi(c.Param("dose"))
	if err != nil {
		badRequest(c, "invalid dose number")
		return "", models.Medication{}, 0, false
	}
	med, err := h.meds.Dose(c.Param("med"), n)
	if err != nil {
		if !errors.Is(err, medconfig.ErrUnknownMedication) {
			err = errors.Join(errBadRequest, err)
		}
		respondError(c, err)
		return "", models.Medication{}, 0, false
	}
	return date, med, n, true
}

// POST /api/days/:date/doses/:med/:dose/toggle
func (h *Handler) ToggleDose(c *gin.Context) {
	date, med, n, ok := h.dose(c)
	if !ok {
		return
	}
	l, err := h.tracker.ToggleDose(c.Request.Context(), date, med.ID, n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// PUT /api/days/:date/doses/:med/:dose/time  body: {"time": "..."}
func (h *Handler) UpdateDoseTime(c *gin.Context) {
	date, med, n, ok := h.dose(c)
	if !ok {
		return
	}
	var req struct {
		Time string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "time is required")
		return
	}
	at, err := models.ParseClock(date, req.Time)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	l, err := h.tracker.UpdateDoseTime(c.Request.Context(), date, med.ID, n, at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// PUT /api/days/:date/doses/:med/:dose/dosage  body: {"value": 900}
func (h *Handler) UpdateDosage(c *gin.Context) {
	date, med, n, ok := h.dose(c)
	if !ok {
		return
	}
	var req struct {
		Value *float64 `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "value is required")
		return
	}
	if !med.DosageAdjustable {
		badRequest(c, med.Name+" does not have an adjustable dosage")
		return
	}
	l, err := h.tracker.UpdateDosage(c.Request.Context(), date, med.ID, n, *req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// PUT /api/days/:date/evening  body: {"time": "..."} (empty means now)
func (h *Handler) SetEveningTime(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}
	var req struct {
		Time string `json:"time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	at := h.tracker.Now()
	if req.Time != "" {
		var err error
		if at, err = models.ParseClock(date, req.Time); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if err := h.tracker.SetEveningTime(c.Request.Context(), date, at); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "taken_at": at})
}

// POST /api/days/:date/extras  body: {"name":"...","dosage":"...","taken_at":"..."}
func (h *Handler) AddExtraMed(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}
	var req struct {
		Name    string `json:"name" binding:"required"`
		Dosage  string `json:"dosage"`
		TakenAt string `json:"taken_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	var at time.Time
	if req.TakenAt != "" {
		var err error
		if at, err = models.ParseClock(date, req.TakenAt); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	med, err := h.tracker.AddExtraMed(c.Request.Context(), date, req.Name, req.Dosage, at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, med)
}

// DELETE /api/days/:date/extras/:id
func (h *Handler) RemoveExtraMed(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}
	if err := h.tracker.RemoveExtraMed(c.Request.Context(), date, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/history/:date
func (h *Handler) GetHistory(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}
	view, err := h.history.Day(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"view":     view,
		"previous": history.Navigate(date, -1, h.tracker.Now()),
		"next":     history.Navigate(date, 1, h.tracker.Now()),
	})
}

// GET /api/calendar/:month
func (h *Handler) GetCalendar(c *gin.Context) {
	year, month, err := history.ParseMonth(c.Param("month"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	summary, err := h.history.Month(c.Request.Context(), year, month, h.tracker.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
