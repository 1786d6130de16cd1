// Package stream delivers session events to clients over Server-Sent
// Events.
//
// The Multiplexer drains one session's queue into one live HTTP response,
// synthesizing heartbeats into idle gaps and closing on the terminal
// event, client disconnect, or session deletion. The Monitor layers
// application-level ping/pong liveness on top: pings ride the normal
// event stream and clients acknowledge through the pong endpoint. The
// Handler binds both to Gin routes.
package stream
