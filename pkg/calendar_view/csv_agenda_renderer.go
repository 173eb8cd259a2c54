package calendar_view

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/view"
	log "github.com/sirupsen/logrus"
)

const (
	csvDateLayout     = "2006-01-02"
	csvDateTimeLayout = "2006-01-02 15:04"
)

type AgendaRenderer interface {
	RenderAgenda(days []view.AgendaDay) (string, error)
}

type CsvAgendaRendererImpl struct {
}

func NewCsvAgendaRenderer() *CsvAgendaRendererImpl {
	return &CsvAgendaRendererImpl{}
}

// RenderAgenda writes one row per event and agenda day. Multi-day events are repeated
// on every day they cover, like in the agenda list.
func (r *CsvAgendaRendererImpl) RenderAgenda(days []view.AgendaDay) (string, error) {
	data := make([][]string, 0, len(days)+1)
	data = append(data, []string{"Date", "Title", "Start", "End", "Color", "Multi-day"})
	for _, day := range days {
		date := day.Date.Format(csvDateLayout)
		for _, e := range day.MultiDay {
			data = append(data, eventRow(date, e, true))
		}
		for _, e := range day.Events {
			data = append(data, eventRow(date, e, false))
		}
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func eventRow(date string, e calendar.Event, multiDay bool) []string {
	return []string{
		date,
		e.Title,
		formatTime(e.StartTime),
		formatTime(e.EndTime),
		string(e.Color),
		yesNo(multiDay),
	}
}

func formatTime(t time.Time) string {
	return t.Format(csvDateTimeLayout)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
