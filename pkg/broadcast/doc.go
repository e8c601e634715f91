// Package broadcast fans a message out to every live subscriber.
//
// WebSocket endpoints use it to push the same fragment to all connected clients:
//
//	hub := broadcast.NewMemoryBroadcaster[string](16)
//
//	sub := hub.Subscribe(ctx)
//	for msg := range sub.Receive(ctx) {
//		_ = sock.Send(msg.Data)
//	}
//
//	_ = hub.Broadcast(ctx, broadcast.Message[string]{Data: "<p>hi</p>"})
//
// A subscriber goes away when its context ends or Close is called. Delivery
// never waits on a slow subscriber; a full buffer drops the message for that
// subscriber only. After Close, Broadcast returns ErrBroadcasterClosed.
package broadcast
