package calendar_view

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventcal/eventcal/internal/rest"
	"github.com/eventcal/eventcal/internal/utils"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/eventcal/eventcal/pkg/view"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service        Service
	agendaRenderer AgendaRenderer
	clock          utils.Clock
}

func NewHandler(service Service, agendaRenderer AgendaRenderer, clock utils.Clock) *Handler {
	return &Handler{service: service, agendaRenderer: agendaRenderer, clock: clock}
}

// GetView godoc
// @Summary Compute the calendar view around a date
// @Tags Calendar
// @Produce json
// @Param date query string false "Focused date (RFC3339), now when empty"
// @Param view query string false "day, week, month, year or agenda (default month)"
// @Param user query string false "Owner user id, or all"
// @Success 200 {object} CalendarView
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/calendar/view [get]
// @Security XUserId
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	focus, ok := h.parseFocus(w, r)
	if !ok {
		return
	}
	granularity := view.Month
	if v := r.URL.Query().Get("view"); v != "" {
		parsed, err := view.ParseGranularity(v)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid view", "'view' must be one of day, week, month, year, agenda")
			return
		}
		granularity = parsed
	}
	log.Debugf("building %s view for %s", granularity, focus)

	result, err := h.service.Build(r.Context(), focus, granularity, r.URL.Query().Get("user"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// GetAgendaCsv godoc
// @Summary Export the agenda of the month around a date as CSV
// @Tags Calendar
// @Produce text/csv
// @Param date query string false "Focused date (RFC3339), now when empty"
// @Param user query string false "Owner user id, or all"
// @Success 200 {string} string "CSV"
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/calendar/agenda.csv [get]
// @Security XUserId
func (h *Handler) GetAgendaCsv(w http.ResponseWriter, r *http.Request) {
	focus, ok := h.parseFocus(w, r)
	if !ok {
		return
	}
	days, err := h.service.Agenda(r.Context(), focus, r.URL.Query().Get("user"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	csv, err := h.agendaRenderer.RenderAgenda(days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agenda-`+focus.Format("2006-01")+`.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(csv)); err != nil {
		log.Errorf("failed to write agenda csv: %v", err)
	}
}

func (h *Handler) parseFocus(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateString := r.URL.Query().Get("date")
	if dateString == "" {
		return h.clock.Now(), true
	}
	focus, err := time.Parse(time.RFC3339, dateString)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in RFC3339 format")
		return time.Time{}, false
	}
	return focus, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, user.ErrNoUser) {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	log.Errorf("calendar view failed: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
