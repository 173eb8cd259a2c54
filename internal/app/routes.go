package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	// Passkey gate
	r.HandleFunc("/api/auth/passkey", deps.PasskeyHandler.Attempt).Methods("POST")
	r.HandleFunc("/api/auth/session", deps.PasskeyHandler.GetSession).Methods("GET")
	r.HandleFunc("/api/auth/session", deps.PasskeyHandler.Logout).Methods("DELETE")

	// Calendar views
	r.HandleFunc("/api/calendar/view", deps.CalendarViewHandler.GetView).Methods("GET")
	r.HandleFunc("/api/calendar/agenda.csv", deps.CalendarViewHandler.GetAgendaCsv).Methods("GET")

	// Calendar events
	r.HandleFunc("/api/calendar/event", deps.EventHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/calendar/event", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.EventHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.EventHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/calendar/event/{eventUid}/drop", deps.EventHandler.DropEvent).Methods("POST")
	r.HandleFunc("/api/calendar/add-request", deps.EventHandler.RequestAdd).Methods("POST")

	// Integrations
	r.HandleFunc("/api/integrations", deps.IntegrationHandler.List).Methods("GET")
	r.HandleFunc("/api/integrations/{type}/connect", deps.IntegrationHandler.Connect).Methods("POST")
	r.HandleFunc("/api/integrations/{id}", deps.IntegrationHandler.Disconnect).Methods("DELETE")
	r.HandleFunc("/api/integrations/{id}/credentials", deps.IntegrationHandler.Configure).Methods("PUT")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user/current/settings", deps.UserHandler.UpdateSettings).Methods("PUT")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")
	r.HandleFunc("/api/user/{userUid}", deps.UserHandler.DeleteUser).Methods("DELETE")
}
