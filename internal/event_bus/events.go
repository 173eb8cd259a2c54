package event_bus

import "time"

const (
	CalendarAddRequested     EventType = "calendar.event.add_requested"
	CalendarDetailRequested  EventType = "calendar.event.detail_requested"
	CalendarEventRescheduled EventType = "calendar.event.rescheduled"
	CalendarViewChanged      EventType = "calendar.view.changed"
	IntegrationConnected     EventType = "integration.connected"
	IntegrationDisconnected  EventType = "integration.disconnected"
)

// AddRequested is published when the user asks to create an event at a day or time slot.
// Hour and Minute are nil for a whole-day request from the month grid.
type AddRequested struct {
	Date   time.Time
	Hour   *int
	Minute *int
}

type EventDetailRequested struct {
	UID string
}

type EventRescheduled struct {
	UID      string
	OldStart time.Time
	OldEnd   time.Time
	NewStart time.Time
	NewEnd   time.Time
}

type ViewChanged struct {
	Granularity string
	Date        time.Time
}

type IntegrationChanged struct {
	UserUid       string
	IntegrationId string
	Type          string
}
