package receiver

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"sensor-receiver.klederson.com/internal/sensor"
)

// MockSource simulates the five sensor nodes for demo mode. Packets are
// encoded and decoded so they follow the same path as radio packets.
type MockSource struct {
	interval time.Duration
	rng      *rand.Rand
	runtime  uint16
	cancel   context.CancelFunc
	log      logrus.FieldLogger
}

// NewMockSource creates a demo source emitting one packet per interval.
func NewMockSource(interval time.Duration, log logrus.FieldLogger) *MockSource {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MockSource{
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log.WithField("component", "mock"),
	}
}

// Start begins emitting packets in a goroutine.
func (s *MockSource) Start(handle Handler) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.loop(ctx, handle)
	return nil
}

func (s *MockSource) loop(ctx context.Context, handle Handler) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	t := 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t += s.interval.Seconds()
			id := sensor.ID(1 + s.rng.Intn(sensor.Count))
			u, err := s.roundTrip(s.packet(id, t, now))
			if err != nil {
				s.log.WithError(err).Warn("Demo packet failed to decode")
				continue
			}
			handle(u)
		}
	}
}

func (s *MockSource) roundTrip(u Update) (Update, error) {
	p, err := Encode(u)
	if err != nil {
		return Update{}, err
	}
	return Decode(p, u.At)
}

// packet builds a plausible reading for id. Fields are occasionally left
// absent, the way a sensor with a failed thermistor transmits.
func (s *MockSource) packet(id sensor.ID, t float64, now time.Time) Update {
	u := Update{Sensor: id, At: now}
	d := &u.Data
	temp := int16(20 + 6*math.Sin(t/60) + s.rng.Float64()*2)
	hum := uint8(45 + 15*math.Sin(t/90))
	vcc := uint8(30 + s.rng.Intn(4)) // tenths of a volt
	lowBat := uint8(0)
	if vcc < 31 {
		lowBat = 1
	}

	switch id {
	case sensor.Sensor1:
		d.S1.LowBattery = sensor.Some(lowBat)
		d.S1.Temperature = s.maybe(temp)
		d.S1.Humidity = sensor.Some(hum)
		d.S1.Vcc = sensor.Some(vcc)
	case sensor.Sensor2:
		d.S2.Temperature = sensor.Some(temp - 3)
		d.S2.Humidity = sensor.Some(hum + 5)
		d.S2.Pressure = sensor.Some(int16(1013 + 8*math.Sin(t/300)))
	case sensor.Sensor3:
		d.S3.LowBattery = sensor.Some(lowBat)
		d.S3.Switch1 = sensor.Some(uint8(s.rng.Intn(2)))
		d.S3.Switch2 = sensor.Some(uint8(s.rng.Intn(2)))
		d.S3.Temperature = s.maybe(temp + 2)
		d.S3.Humidity = sensor.Some(hum)
		d.S3.Vcc = sensor.Some(vcc)
	case sensor.Sensor4:
		s.runtime = (s.runtime + 1) % 1000
		d.S4.LowBattery = sensor.Some(lowBat)
		d.S4.Vcc = sensor.Some(vcc)
		d.S4.Runtime = sensor.Some(s.runtime)
	case sensor.Sensor5:
		d.S5.LowBattery = sensor.Some(lowBat)
		d.S5.Vcc = sensor.Some(vcc)
		d.S5.Switch1 = sensor.Some(uint8(s.rng.Intn(2)))
		d.S5.PCI1 = sensor.Some(uint8(s.rng.Intn(4)))
	}
	return u
}

func (s *MockSource) maybe(v int16) sensor.Reading[int16] {
	if s.rng.Float64() < 0.05 {
		return sensor.Reading[int16]{}
	}
	return sensor.Some(v)
}

// Stop halts the source.
func (s *MockSource) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}
