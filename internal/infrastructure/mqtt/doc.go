// Package mqtt is the broker transport for a node session.
//
// Transport adapts paho.mqtt.golang to session.Transport. paho's own
// reconnect loop is disabled: the session decides when to reconnect and
// restores subscriptions itself, so a dropped link simply reports
// IsConnected() == false until the next Connect.
//
// Inbound messages arrive on paho's goroutines and are queued in a bounded
// inbox. Poll drains it without blocking, which keeps all handler code on
// the scheduler goroutine. When the inbox is full new messages are dropped
// and logged.
//
// # Presence
//
// The broker holds a retained last-will of "offline" on
// <channel>/<device>/s/gen/online. Connect publishes a retained "online"
// there and a graceful Disconnect publishes "offline" before closing.
//
// # Usage
//
//	t := mqtt.New(mqtt.Options{StatusTopic: topic.Publish("std", "node-1", "", "gen/online")})
//	if err := t.Connect(ctx, creds); err != nil {
//	    return err
//	}
//	defer t.Disconnect()
package mqtt
