// Package relay implements the room relay: a registry of long-lived
// WebSocket connections grouped into named rooms, with payload relay
// among room members and server-initiated broadcasts.
//
// Wire frames are JSON envelopes of the form {"event": ..., "data": ...}.
// Inbound events: join_room, send_message, subscribe_notifications,
// update_status, increment_counter. Outbound events: user_joined,
// receive_message, status_updated, counter_updated, user_disconnected,
// new_notification, broadcast_message.
//
// Notification channels are ordinary rooms named "notifications_<userId>"
// used for one-to-one push.
package relay
