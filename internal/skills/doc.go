// Package skills implements every skill kind the node can run and the
// factory that builds them from configuration.
//
// Sensors (DHT, light) run the sense cycle HEATUP -> MEASURE -> PUBLISH ->
// SLEEP and publish only on change beyond a hysteresis threshold. Binary
// inputs (motion, switch) sample on each due tick and publish on the next
// one. Actuators (relay, pixel) decode commands in OnMessage and apply at
// most one per tick. The beacon skill republishes the latest decoded
// advertisement and the system skill handles node commands.
package skills
