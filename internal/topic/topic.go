// Package topic builds and parses the node's MQTT topic namespace.
//
// Every topic has the shape:
//
//	<channel>/<device_id>/<direction>/[<entity>/]<suffix>
//
// where direction is "s" for status (published by the node) or "r" for
// requests (subscribed by the node). The suffix may itself contain slashes,
// e.g. "temp_hum/temp".
//
// All functions are pure. Skills build their topics once at construction.
package topic

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultChannel is used when a device has no channel configured.
const DefaultChannel = "std"

// Direction marks which way a topic flows relative to the node.
type Direction string

const (
	// Status topics carry telemetry published by the node.
	Status Direction = "s"

	// Request topics carry commands the node subscribes to.
	Request Direction = "r"
)

// ErrInvalidTopic is returned by Parse for strings outside the namespace.
var ErrInvalidTopic = errors.New("topic: invalid topic")

// Build joins the parts of a topic. An empty entity is omitted.
//
// Example: Build("std", "dev1", Status, "kitchen", "relay/state")
// returns "std/dev1/s/kitchen/relay/state".
func Build(channel, device string, dir Direction, entity, suffix string) string {
	if channel == "" {
		channel = DefaultChannel
	}
	if entity == "" {
		return fmt.Sprintf("%s/%s/%s/%s", channel, device, dir, suffix)
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", channel, device, dir, entity, suffix)
}

// Publish returns the status topic for a signal.
//
// Example: std/dev1/s/temp_hum/temp
func Publish(channel, device, entity, suffix string) string {
	return Build(channel, device, Status, entity, suffix)
}

// Subscribe returns the request topic for a command.
//
// Example: std/dev1/r/relay/switch
func Subscribe(channel, device, entity, suffix string) string {
	return Build(channel, device, Request, entity, suffix)
}

// Builder binds a channel, device and entity so a skill can name its
// topics by suffix alone.
type Builder struct {
	Channel string
	Device  string
	Entity  string
}

// Status returns the status topic for suffix.
func (b Builder) Status(suffix string) string {
	return Publish(b.Channel, b.Device, b.Entity, suffix)
}

// Request returns the request topic for suffix.
func (b Builder) Request(suffix string) string {
	return Subscribe(b.Channel, b.Device, b.Entity, suffix)
}

// Parts is a topic split into its components. Entity and suffix cannot be
// told apart syntactically, so Rest holds everything after the direction.
type Parts struct {
	Channel   string
	Device    string
	Direction Direction
	Rest      string
}

// Parse splits a topic into its fixed leading parts and validates the
// direction segment.
func Parse(t string) (Parts, error) {
	segs := strings.SplitN(t, "/", 4)
	if len(segs) < 4 {
		return Parts{}, fmt.Errorf("%w: %q has too few segments", ErrInvalidTopic, t)
	}
	for _, s := range segs {
		if s == "" {
			return Parts{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidTopic, t)
		}
	}
	dir := Direction(segs[2])
	if dir != Status && dir != Request {
		return Parts{}, fmt.Errorf("%w: direction %q", ErrInvalidTopic, segs[2])
	}
	return Parts{
		Channel:   segs[0],
		Device:    segs[1],
		Direction: dir,
		Rest:      segs[3],
	}, nil
}
