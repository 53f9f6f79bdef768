//go:build nrf51 && microbit

package main

import (
	"image/color"

	"tinygo.org/x/drivers/microbitmatrix"
)

var (
	display  microbitmatrix.Device
	pixelOn  = color.RGBA{255, 255, 255, 255}
	pixelOff = color.RGBA{}
)

func initHeartbeatLED() {
	display = microbitmatrix.New()
	display.Configure(microbitmatrix.Config{})
	display.ClearDisplay()
}

// showHeartbeat lights the centre pixel on odd beats. The matrix is
// multiplexed and only stays lit while it is refreshed, so this is called
// from every main loop pass.
func showHeartbeat(beats uint32) {
	if beats&1 == 0 {
		display.SetPixel(2, 2, pixelOff)
		return
	}
	display.SetPixel(2, 2, pixelOn)
	display.Display()
}
