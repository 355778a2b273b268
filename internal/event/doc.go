// Package event provides the synchronous pub-sub bus that carries engine
// notifications to journals, presentation layers and tests.
//
// Publishers never know their subscribers. The orchestrator publishes
// [TurnStartedEvent], [RoleConsultedEvent], [AdvisoryRaisedEvent] and
// [TurnCompletedEvent]; the event log publishes [TranscriptAppendedEvent] for
// every entry; the role registry publishes [RolesReloadedEvent].
//
//	bus := event.NewBus(event.WithLogger(logger))
//	bus.Subscribe(event.TypeTranscriptAppended, func(e event.Event) {
//	    appended := e.(event.TranscriptAppendedEvent)
//	    fmt.Println(appended.Lane, appended.Text)
//	})
//
// Handlers run synchronously on the publisher's goroutine in registration
// order, specific subscriptions before [Bus.SubscribeAll] ones. Panics in a
// handler are recovered and logged.
package event
