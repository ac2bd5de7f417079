// Package api contains the transport layer for the arena engine.
//
// The http subpackage serves the public gateway: session commands,
// read-only views, the persisted journal and the live event stream.
// Transports translate wire requests into engine calls and map domain
// errors to protocol statuses; they hold no game state of their own.
package api
