package influxdb

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-node/internal/topic"
)

// MeasurementTelemetry is the measurement every mirrored publication is
// written to.
const MeasurementTelemetry = "node_telemetry"

// Mirror queues one point for a publication. It satisfies session.Mirror
// and never blocks.
func (c *Client) Mirror(t, payload string) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(telemetryPoint(c.deviceID, t, payload, c.now()))
}

// telemetryPoint maps a publication to a point. Finite numeric payloads
// become the float field "value"; anything else, including "nan", is kept
// verbatim in the string field "text". Topics that parse are tagged by
// channel and key (the part after the direction); others by the raw topic.
func telemetryPoint(deviceID, t, payload string, ts time.Time) *write.Point {
	tags := map[string]string{"device": deviceID}
	if parts, err := topic.Parse(t); err == nil {
		tags["channel"] = parts.Channel
		tags["key"] = parts.Rest
	} else {
		tags["topic"] = t
	}

	fields := make(map[string]interface{}, 1)
	trimmed := strings.TrimSpace(payload)
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		fields["value"] = v
	} else {
		fields["text"] = payload
	}

	return write.NewPoint(MeasurementTelemetry, tags, fields, ts)
}
