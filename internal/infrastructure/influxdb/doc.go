// Package influxdb mirrors node publications into InfluxDB.
//
// Every payload the node publishes on the bus is offered to the mirror
// through session.Mirror, connected or not. Numeric payloads become the
// float field "value" of measurement node_telemetry; everything else is
// stored in the string field "text". Points carry device, channel and key
// tags.
//
// # Usage
//
//	mirror, err := influxdb.Connect(ctx, cfg.InfluxDB, cfg.Device.ID)
//	if err != nil {
//	    return err
//	}
//	defer mirror.Close()
//	sess.SetMirror(mirror)
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Write failures are delivered to the SetOnError callback.
package influxdb
