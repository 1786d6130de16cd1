// Package component defines the core interfaces for lifecycle-managed
// infrastructure services in menustream.
//
// Components represent services that require startup, shutdown, and health
// monitoring. They are registered with a Registry for deterministic
// lifecycle management: started in registration order, stopped in reverse.
package component
