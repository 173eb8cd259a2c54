package app

import (
	"github.com/eventcal/eventcal/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// SubscribeEvents registers the application's bus subscribers.
func SubscribeEvents(deps *Dependencies) {
	bus := deps.EventBus

	event_bus.SubscribeTyped(bus, event_bus.CalendarAddRequested, func(e event_bus.EventT[event_bus.AddRequested]) error {
		log.WithField("date", e.Data.Date).Debug("event add requested")
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarDetailRequested, func(e event_bus.EventT[event_bus.EventDetailRequested]) error {
		log.WithField("uid", e.Data.UID).Debug("event detail requested")
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarEventRescheduled, func(e event_bus.EventT[event_bus.EventRescheduled]) error {
		log.WithFields(log.Fields{
			"uid":  e.Data.UID,
			"from": e.Data.OldStart,
			"to":   e.Data.NewStart,
		}).Info("event rescheduled")
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarViewChanged, func(e event_bus.EventT[event_bus.ViewChanged]) error {
		log.WithFields(log.Fields{
			"view": e.Data.Granularity,
			"date": e.Data.Date,
		}).Trace("calendar view changed")
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.IntegrationConnected, func(e event_bus.EventT[event_bus.IntegrationChanged]) error {
		log.WithFields(log.Fields{
			"user":        e.Data.UserUid,
			"integration": e.Data.IntegrationId,
		}).Info("integration connected")
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.IntegrationDisconnected, func(e event_bus.EventT[event_bus.IntegrationChanged]) error {
		log.WithFields(log.Fields{
			"user":        e.Data.UserUid,
			"integration": e.Data.IntegrationId,
		}).Info("integration disconnected")
		return deps.Syncer.Forget(e.Context(), e.Data.UserUid, e.Data.IntegrationId)
	})
}
