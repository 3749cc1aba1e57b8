// Package sse implements the event-stream registry: one-way, long-lived
// HTTP connections pushed to in the Server-Sent-Events format.
//
// Every frame is "data: <json>\n\n". A connection receives a connection
// event and a welcome event when it opens, then a heartbeat on a fixed
// period. Broadcasts reach every registered connection; a connection
// whose write fails is removed after the broadcast pass completes.
package sse
