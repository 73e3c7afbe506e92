package influxdb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
)

type fakeWriter struct {
	points  []*write.Point
	flushes int
}

func (w *fakeWriter) WritePoint(p *write.Point) { w.points = append(w.points, p) }
func (w *fakeWriter) Flush()                    { w.flushes++ }

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestClient() (*Client, *fakeWriter) {
	w := &fakeWriter{}
	c := newClient(w, "dev1")
	c.now = func() time.Time { return t0 }
	return c, w
}

func tagsOf(p *write.Point) map[string]string {
	out := make(map[string]string)
	for _, tag := range p.TagList() {
		out[tag.Key] = tag.Value
	}
	return out
}

func fieldsOf(p *write.Point) map[string]interface{} {
	out := make(map[string]interface{})
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

// =============================================================================
// Point Mapping Tests
// =============================================================================

func TestTelemetryPoint_Fields(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantField string
		wantValue interface{}
	}{
		{"float", "22.5", "value", 22.5},
		{"integer", "300", "value", 300.0},
		{"padded", " 55.0 ", "value", 55.0},
		{"negative", "-4.2", "value", -4.2},
		{"nan sentinel", "nan", "text", "nan"},
		{"infinity", "Inf", "text", "Inf"},
		{"state", "ON", "text", "ON"},
		{"colour", "10,20,30", "text", "10,20,30"},
		{"empty", "", "text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := telemetryPoint("dev1", "std/dev1/s/dht/temp", tt.payload, t0)
			fields := fieldsOf(p)
			if len(fields) != 1 {
				t.Fatalf("fields = %v, want exactly one", fields)
			}
			if got := fields[tt.wantField]; got != tt.wantValue {
				t.Errorf("field %s = %v (%T), want %v", tt.wantField, got, got, tt.wantValue)
			}
		})
	}
}

func TestTelemetryPoint_Tags(t *testing.T) {
	p := telemetryPoint("dev1", "std/dev1/s/dht/temp", "22.5", t0)

	if p.Name() != MeasurementTelemetry {
		t.Errorf("Name() = %q, want %q", p.Name(), MeasurementTelemetry)
	}
	tags := tagsOf(p)
	want := map[string]string{"device": "dev1", "channel": "std", "key": "dht/temp"}
	for k, v := range want {
		if tags[k] != v {
			t.Errorf("tag %s = %q, want %q", k, tags[k], v)
		}
	}
	if _, ok := tags["topic"]; ok {
		t.Error("parsed topic should not carry a raw topic tag")
	}
	if !p.Time().Equal(t0) {
		t.Errorf("Time() = %v, want %v", p.Time(), t0)
	}
}

func TestTelemetryPoint_UnparsableTopic(t *testing.T) {
	p := telemetryPoint("dev1", "odd/topic", "1", t0)
	tags := tagsOf(p)
	if tags["topic"] != "odd/topic" {
		t.Errorf("tag topic = %q, want odd/topic", tags["topic"])
	}
	if _, ok := tags["key"]; ok {
		t.Error("unparsable topic should not carry a key tag")
	}
}

func TestTelemetryPoint_LineProtocol(t *testing.T) {
	p := telemetryPoint("dev1", "std/dev1/s/dht/hum", "49.2", t0)
	line := write.PointToLineProtocol(p, time.Nanosecond)

	if !strings.HasPrefix(line, "node_telemetry,channel=std,device=dev1,key=dht/hum value=49.2 ") {
		t.Errorf("line protocol = %q", line)
	}
}

// =============================================================================
// Mirror Tests
// =============================================================================

func TestMirror_WritesPoint(t *testing.T) {
	c, w := newTestClient()

	c.Mirror("std/dev1/s/motion/state", "ON")
	c.Mirror("std/dev1/s/light/raw", "812")

	if len(w.points) != 2 {
		t.Fatalf("points = %d, want 2", len(w.points))
	}
	if got := fieldsOf(w.points[0])["text"]; got != "ON" {
		t.Errorf("first point text = %v, want ON", got)
	}
	if got := fieldsOf(w.points[1])["value"]; got != 812.0 {
		t.Errorf("second point value = %v, want 812", got)
	}
}

func TestMirror_AfterClose(t *testing.T) {
	c, w := newTestClient()

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if w.flushes != 1 {
		t.Errorf("flushes on Close = %d, want 1", w.flushes)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}

	c.Mirror("std/dev1/s/dht/temp", "20.0")
	c.Flush()
	if len(w.points) != 0 {
		t.Errorf("points after Close = %d, want 0", len(w.points))
	}
	if w.flushes != 1 {
		t.Errorf("Flush after Close should be a no-op, flushes = %d", w.flushes)
	}

	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestHandleWriteErrors(t *testing.T) {
	c, _ := newTestClient()

	got := make(chan error, 1)
	c.SetOnError(func(err error) { got <- err })

	ch := make(chan error, 1)
	ch <- errors.New("bucket not found")
	close(ch)
	c.handleWriteErrors(ch)

	select {
	case err := <-got:
		if !errors.Is(err, ErrWriteFailed) {
			t.Errorf("callback error = %v, want ErrWriteFailed", err)
		}
	default:
		t.Fatal("error callback not invoked")
	}
}

func TestHealthCheck_NotConnected(t *testing.T) {
	c, _ := newTestClient()
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(context.Background(), config.InfluxDBConfig{Enabled: false}, "dev1")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cfg := config.InfluxDBConfig{
		Enabled: true,
		URL:     "http://127.0.0.1:59999",
		Org:     "graylogic",
		Bucket:  "telemetry",
	}
	_, err := Connect(ctx, cfg, "dev1")
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}
