package google

import (
	"context"
	"errors"
	"net/http"

	"github.com/eventcal/eventcal/internal/rest"
	"github.com/eventcal/eventcal/pkg/integration"
	log "github.com/sirupsen/logrus"
)

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary"`
}

type Handler struct {
	source       *Source
	integrations integration.Service
}

func NewHandler(source *Source, integrations integration.Service) *Handler {
	return &Handler{source: source, integrations: integrations}
}

// ListCalendars godoc
// @Summary List the Google calendars visible to the connected account
// @Tags Integration
// @Produce json
// @Success 200 {array} CalendarItemDto
// @Failure 403 {string} string "Forbidden"
// @Router /api/integrations/google/calendars [get]
// @Security XUserId
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	connected, ok, err := h.integrations.GetByType(r.Context(), integration.TypeGoogleCalendar)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "google calendar is not connected", http.StatusForbidden)
		return
	}

	calendars, err := h.source.ListCalendars(r.Context(), connected)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendars)
}

func (s *Source) ListCalendars(ctx context.Context, in integration.Integration) ([]CalendarItemDto, error) {
	service, err := s.prepareGoogleService(ctx, in)
	if err != nil {
		return nil, err
	}
	calendars, err := service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		log.Errorf("unable to retrieve calendars from Google Calendar: %v", err)
		return nil, err
	}
	items := make([]CalendarItemDto, 0, len(calendars.Items))
	for _, c := range calendars.Items {
		items = append(items, CalendarItemDto{Id: c.Id, Summary: c.Summary, Primary: c.Primary})
	}
	return items, nil
}
