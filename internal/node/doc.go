// Package node is the composition root of the sensor node.
//
// It turns a loaded configuration into a running node: it picks the
// board driver, builds the bus session over the MQTT transport, constructs
// the system skill followed by every configured skill, and drives them
// from a single cooperative loop.
//
// # Run loop
//
// Each pass performs session maintenance, dispatches at most one inbound
// message, ticks every running skill once and then sleeps for the idle
// interval. Reset requests raised by skills take effect after the current
// pass: every skill is stopped, the session is closed and Run returns an
// error wrapping ErrResetRequested.
//
// # Modes
//
// The node starts in normal mode. Maintenance mode stops every skill
// except the system skill, leaving the bus connected so a later reset
// command is still received.
package node
