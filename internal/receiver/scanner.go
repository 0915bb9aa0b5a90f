package receiver

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"sensor-receiver.klederson.com/internal/config"
	"sensor-receiver.klederson.com/internal/metrics"
)

// Handler receives decoded packets. It is called from the source's goroutine.
type Handler func(Update)

// Source produces sensor packets.
type Source interface {
	Start(handle Handler) error
	Stop()
}

// BLEScanner receives sensor advertisements over Bluetooth Low Energy.
type BLEScanner struct {
	adapter *bluetooth.Adapter
	running atomic.Bool
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewBLEScanner creates a scanner on the named adapter. An empty name
// selects the system default.
func NewBLEScanner(adapter string, log logrus.FieldLogger, m *metrics.Metrics) *BLEScanner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BLEScanner{
		adapter: adapterFor(adapter),
		log:     log.WithFields(logrus.Fields{"component": "ble", "adapter": adapter}),
		metrics: m,
	}
}

// Start enables the adapter and begins scanning in a goroutine.
func (s *BLEScanner) Start(handle Handler) error {
	if err := s.adapter.Enable(); err != nil {
		return errors.Wrap(err, "failed to enable BLE adapter (try running with sudo or setcap cap_net_admin+ep)")
	}

	s.running.Store(true)
	go func() {
		err := s.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if !s.running.Load() {
				return
			}
			for _, mfr := range result.ManufacturerData() {
				if mfr.CompanyID != config.CompanyID {
					continue
				}
				u, err := Decode(mfr.Data, time.Now())
				if err != nil {
					s.metrics.DecodeError()
					s.log.WithError(err).WithField("addr", result.Address.String()).Debug("Ignoring advertisement")
					continue
				}
				handle(u)
			}
		})
		if err != nil {
			s.log.WithError(err).Error("BLE scan stopped")
		}
	}()

	return nil
}

// Stop halts the scanner.
func (s *BLEScanner) Stop() {
	s.running.Store(false)
	_ = s.adapter.StopScan()
}
