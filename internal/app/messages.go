package app

import (
	"time"

	"sensor-receiver.klederson.com/internal/receiver"
)

// TickMsg triggers a frame update.
type TickMsg time.Time

// CaptureMsg triggers a periodic snapshot.
type CaptureMsg time.Time

// PacketMsg carries a decoded packet from the running source.
type PacketMsg receiver.Update

// DumpedMsg reports the result of a buffer dump.
type DumpedMsg struct {
	Lines int
	Err   error
}
