package receiver

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"sensor-receiver.klederson.com/internal/sensor"
)

var (
	ErrUnknownSensor = errors.New("unknown sensor id")
	ErrShortPayload  = errors.New("payload too short")
)

// Payload lengths including the leading sensor id byte.
var payloadLen = map[sensor.ID]int{
	sensor.Sensor1: 6,
	sensor.Sensor2: 6,
	sensor.Sensor3: 8,
	sensor.Sensor4: 5,
	sensor.Sensor5: 5,
}

// Update is one decoded packet. Only the group of Data that belongs to
// Sensor is meaningful.
type Update struct {
	Sensor sensor.ID
	At     time.Time
	Data   sensor.Snapshot
}

// Label returns the sensor id as a metrics/log label.
func (u Update) Label() string {
	return strconv.Itoa(int(u.Sensor))
}

// Apply overwrites the sensor's group in s and stamps its LastSeen.
func (u Update) Apply(s *sensor.Snapshot) {
	switch u.Sensor {
	case sensor.Sensor1:
		s.S1 = u.Data.S1
		s.S1.LastSeen = u.At
	case sensor.Sensor2:
		s.S2 = u.Data.S2
		s.S2.LastSeen = u.At
	case sensor.Sensor3:
		s.S3 = u.Data.S3
		s.S3.LastSeen = u.At
	case sensor.Sensor4:
		s.S4 = u.Data.S4
		s.S4.LastSeen = u.At
	case sensor.Sensor5:
		s.S5 = u.Data.S5
		s.S5.LastSeen = u.At
	}
}

// Decode parses the manufacturer data of a sensor advertisement.
// Multi-byte fields are little endian; sentinel codes decode as absent.
func Decode(p []byte, at time.Time) (Update, error) {
	if len(p) == 0 {
		return Update{}, ErrShortPayload
	}
	id := sensor.ID(p[0])
	if !id.Valid() {
		return Update{}, errors.Wrapf(ErrUnknownSensor, "id %d", p[0])
	}
	want := payloadLen[id]
	if len(p) < want {
		return Update{}, errors.Wrapf(ErrShortPayload, "sensor %d: got %d bytes, want %d", id, len(p), want)
	}

	u := Update{Sensor: id, At: at}
	d := &u.Data
	switch id {
	case sensor.Sensor1:
		d.S1.LowBattery = sensor.FromCode(p[1], sensor.NoLowBattery)
		d.S1.Temperature = sensor.FromCode(i16(p[2:]), sensor.NoTemperature)
		d.S1.Humidity = sensor.FromCode(p[4], sensor.NoHumidity)
		d.S1.Vcc = sensor.FromCode(p[5], sensor.NoVcc)
	case sensor.Sensor2:
		d.S2.Temperature = sensor.FromCode(i16(p[1:]), sensor.NoTemperature)
		d.S2.Humidity = sensor.FromCode(p[3], sensor.NoHumidity)
		d.S2.Pressure = sensor.FromCode(i16(p[4:]), sensor.NoPressure)
	case sensor.Sensor3:
		d.S3.LowBattery = sensor.FromCode(p[1], sensor.NoLowBattery)
		d.S3.Switch1 = sensor.FromCode(p[2], sensor.NoSwitch)
		d.S3.Switch2 = sensor.FromCode(p[3], sensor.NoSwitch)
		d.S3.Temperature = sensor.FromCode(i16(p[4:]), sensor.NoTemperature)
		d.S3.Humidity = sensor.FromCode(p[6], sensor.NoHumidity)
		d.S3.Vcc = sensor.FromCode(p[7], sensor.NoVcc)
	case sensor.Sensor4:
		d.S4.LowBattery = sensor.FromCode(p[1], sensor.NoLowBattery)
		d.S4.Vcc = sensor.FromCode(p[2], sensor.NoVcc)
		d.S4.Runtime = sensor.FromCode(binary.LittleEndian.Uint16(p[3:]), sensor.NoRuntime)
	case sensor.Sensor5:
		d.S5.LowBattery = sensor.FromCode(p[1], sensor.NoLowBattery)
		d.S5.Vcc = sensor.FromCode(p[2], sensor.NoVcc)
		d.S5.Switch1 = sensor.FromCode(p[3], sensor.NoSwitch)
		d.S5.PCI1 = sensor.FromCode(p[4], sensor.NoPCI)
	}
	return u, nil
}

// Encode is the inverse of Decode. The demo source uses it so simulated
// packets take the same path as real ones.
func Encode(u Update) ([]byte, error) {
	if !u.Sensor.Valid() {
		return nil, errors.Wrapf(ErrUnknownSensor, "id %d", u.Sensor)
	}
	n := payloadLen[u.Sensor]
	p := make([]byte, n)
	p[0] = byte(u.Sensor)
	d := u.Data
	switch u.Sensor {
	case sensor.Sensor1:
		p[1] = d.S1.LowBattery.Code(sensor.NoLowBattery)
		putI16(p[2:], d.S1.Temperature.Code(sensor.NoTemperature))
		p[4] = d.S1.Humidity.Code(sensor.NoHumidity)
		p[5] = d.S1.Vcc.Code(sensor.NoVcc)
	case sensor.Sensor2:
		putI16(p[1:], d.S2.Temperature.Code(sensor.NoTemperature))
		p[3] = d.S2.Humidity.Code(sensor.NoHumidity)
		putI16(p[4:], d.S2.Pressure.Code(sensor.NoPressure))
	case sensor.Sensor3:
		p[1] = d.S3.LowBattery.Code(sensor.NoLowBattery)
		p[2] = d.S3.Switch1.Code(sensor.NoSwitch)
		p[3] = d.S3.Switch2.Code(sensor.NoSwitch)
		putI16(p[4:], d.S3.Temperature.Code(sensor.NoTemperature))
		p[6] = d.S3.Humidity.Code(sensor.NoHumidity)
		p[7] = d.S3.Vcc.Code(sensor.NoVcc)
	case sensor.Sensor4:
		p[1] = d.S4.LowBattery.Code(sensor.NoLowBattery)
		p[2] = d.S4.Vcc.Code(sensor.NoVcc)
		binary.LittleEndian.PutUint16(p[3:], d.S4.Runtime.Code(sensor.NoRuntime))
	case sensor.Sensor5:
		p[1] = d.S5.LowBattery.Code(sensor.NoLowBattery)
		p[2] = d.S5.Vcc.Code(sensor.NoVcc)
		p[3] = d.S5.Switch1.Code(sensor.NoSwitch)
		p[4] = d.S5.PCI1.Code(sensor.NoPCI)
	}
	return p, nil
}

func i16(b []byte) int16 {
	return int16(binary.LittleEndian.Uint16(b))
}

func putI16(b []byte, v int16) {
	binary.LittleEndian.PutUint16(b, uint16(v))
}
