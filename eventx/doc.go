// Package eventx carries the audit events the tool handlers emit.
//
// Events are typed and get a UUID when created:
//
//	ev := eventx.NewToolInvoked(eventx.ToolInvoked{Tool: "send_message", Success: true})
//
// A Publisher delivers them. MemoryBus dispatches to in-process subscribers,
// SQSPublisher sends JSON messages to a queue, and FanOut combines several.
//
//	bus := eventx.NewMemoryBus()
//	eventx.SubscribeTyped(bus, eventx.TypeToolInvoked, func(e eventx.TypedEvent[eventx.ToolInvoked]) error {
//		logx.Info("tool %s finished", e.Data().Tool)
//		return nil
//	})
//	_ = bus.Publish(ctx, ev)
package eventx
