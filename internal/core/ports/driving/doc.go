// Package driving defines the interfaces through which external actors
// drive the core (primary/inbound ports).
//
// The CLI and MCP adapters depend on these interfaces; core services
// implement them. Any outer surface (an HTTP layer, a GUI) would call
// into the core through this same narrow surface.
package driving
