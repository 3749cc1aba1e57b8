// Package websocket upgrades HTTP requests into room relay
// connections.
//
// Clients connect to /ws and exchange JSON envelopes with the relay
// hub; see the relay package for the event vocabulary.
package websocket
