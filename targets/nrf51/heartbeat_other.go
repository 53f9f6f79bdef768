//go:build nrf51 && !microbit

package main

// Boards without a known indicator keep the heartbeat timer running but
// show nothing; get_alarm still reports it as a pending timer.

func initHeartbeatLED() {}

func showHeartbeat(beats uint32) {}
