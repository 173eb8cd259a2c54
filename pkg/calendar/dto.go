package calendar

import "time"

type EventDTO struct {
	UID         string         `json:"uid"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartTime   time.Time      `json:"startDate"`
	EndTime     time.Time      `json:"endDate"`
	Color       Color          `json:"color"`
	User        UserRef        `json:"user"`
	Integration IntegrationRef `json:"integration"`
	Recurrence  string         `json:"recurrence,omitempty"`
	MultiDay    bool           `json:"multiDay"`
}

func EventToDTO(e Event) EventDTO {
	return EventDTO{
		UID:         e.UID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Color:       e.Color,
		User:        e.User,
		Integration: e.Integration,
		Recurrence:  e.Recurrence,
		MultiDay:    e.IsMultiDay(),
	}
}

func EventsToDTO(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(e))
	}
	return dtos
}

func DTOToEvent(dto EventDTO) Event {
	return Event{
		UID:         dto.UID,
		Title:       dto.Title,
		Description: dto.Description,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
		Color:       dto.Color,
		Recurrence:  dto.Recurrence,
	}
}
