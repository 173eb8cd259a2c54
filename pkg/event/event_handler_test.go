package event

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eventcal/eventcal/internal/rest"
	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, *EventServiceImpl) {
	t.Helper()
	_, service, _, _ := setupServiceTest(t)
	handler := NewEventHandler(service)
	router := mux.NewRouter()
	router.HandleFunc("/api/calendar/event", handler.GetEvents).Methods("GET")
	router.HandleFunc("/api/calendar/event", handler.CreateEvent).Methods("POST")
	router.HandleFunc("/api/calendar/event/{eventUid}", handler.GetEvent).Methods("GET")
	router.HandleFunc("/api/calendar/event/{eventUid}", handler.UpdateEvent).Methods("PUT")
	router.HandleFunc("/api/calendar/event/{eventUid}", handler.DeleteEvent).Methods("DELETE")
	router.HandleFunc("/api/calendar/event/{eventUid}/drop", handler.DropEvent).Methods("POST")
	router.HandleFunc("/api/calendar/add-request", handler.RequestAdd).Methods("POST")
	return router, service
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req = req.WithContext(user.WithUser(req.Context(), testUser))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEventHandler_CreateAndGet(t *testing.T) {
	router, _ := setupHandlerTest(t)

	w := serve(router, http.MethodPost, "/api/calendar/event",
		`{"title":"Lunch","startDate":"2025-03-11T13:00:00Z","endDate":"2025-03-11T14:00:00Z","color":"red"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created calendar.EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	w = serve(router, http.MethodGet, "/api/calendar/event/"+created.UID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched calendar.EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
	assert.Equal(t, "Lunch", fetched.Title)
	assert.Equal(t, calendar.ColorRed, fetched.Color)
	assert.False(t, fetched.MultiDay)
}

func TestEventHandler_CreateEvent_Invalid(t *testing.T) {
	router, _ := setupHandlerTest(t)

	w := serve(router, http.MethodPost, "/api/calendar/event",
		`{"title":"Backwards","startDate":"2025-03-11T14:00:00Z","endDate":"2025-03-11T13:00:00Z"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResponse rest.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResponse))
	assert.Equal(t, "Invalid event", errResponse.Error)
}

func TestEventHandler_GetEvents(t *testing.T) {
	t.Run("should validate range", func(t *testing.T) {
		router, _ := setupHandlerTest(t)

		w := serve(router, http.MethodGet, "/api/calendar/event?from=yesterday&to=2025-03-12T00:00:00Z", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var errResponse rest.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errResponse))
		assert.Equal(t, "Invalid from (date) format", errResponse.Error)
	})

	t.Run("should return events in range", func(t *testing.T) {
		router, _ := setupHandlerTest(t)
		serve(router, http.MethodPost, "/api/calendar/event",
			`{"title":"Lunch","startDate":"2025-03-11T13:00:00Z","endDate":"2025-03-11T14:00:00Z"}`)

		w := serve(router, http.MethodGet, "/api/calendar/event?from=2025-03-11T00:00:00Z&to=2025-03-12T00:00:00Z", "")

		require.Equal(t, http.StatusOK, w.Code)
		var events []calendar.EventDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&events))
		require.Len(t, events, 1)
		assert.Equal(t, "u1", events[0].User.Id)
	})
}

func TestEventHandler_DropEvent(t *testing.T) {
	t.Run("should reschedule to slot", func(t *testing.T) {
		router, _ := setupHandlerTest(t)
		w := serve(router, http.MethodPost, "/api/calendar/event",
			`{"title":"Lunch","startDate":"2025-03-11T13:00:00Z","endDate":"2025-03-11T14:00:00Z"}`)
		var created calendar.EventDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

		w = serve(router, http.MethodPost, "/api/calendar/event/"+created.UID+"/drop", `{"date":"2025-03-11","hour":15,"minute":15}`)

		require.Equal(t, http.StatusOK, w.Code)
		var moved calendar.EventDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&moved))
		assert.Equal(t, at(11, 15, 15), moved.StartTime.UTC())
		assert.Equal(t, at(11, 16, 15), moved.EndTime.UTC())
	})

	t.Run("should reject bad date and hour", func(t *testing.T) {
		router, _ := setupHandlerTest(t)

		assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/api/calendar/event/x/drop", `{"date":"11.03.2025"}`).Code)
		assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/api/calendar/event/x/drop", `{"date":"2025-03-11","hour":24}`).Code)
	})

	t.Run("should return 404 for unknown event", func(t *testing.T) {
		router, _ := setupHandlerTest(t)

		w := serve(router, http.MethodPost, "/api/calendar/event/missing/drop", `{"date":"2025-03-11"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEventHandler_RequestAdd(t *testing.T) {
	router, _ := setupHandlerTest(t)

	w := serve(router, http.MethodPost, "/api/calendar/add-request", `{"date":"2025-03-11","hour":9}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	var draft calendar.EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&draft))
	assert.Equal(t, at(11, 9, 0), draft.StartTime.UTC())
	assert.Empty(t, draft.UID)
}

func TestEventHandler_DeleteEvent(t *testing.T) {
	router, _ := setupHandlerTest(t)
	w := serve(router, http.MethodPost, "/api/calendar/event",
		`{"title":"Lunch","startDate":"2025-03-11T13:00:00Z","endDate":"2025-03-11T14:00:00Z"}`)
	var created calendar.EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, "/api/calendar/event/"+created.UID, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, "/api/calendar/event/"+created.UID, "").Code)
}
