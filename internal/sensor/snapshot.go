package sensor

import (
	"math"
	"time"
)

// ID identifies one of the five remote sensors.
type ID uint8

const (
	Sensor1 ID = iota + 1
	Sensor2
	Sensor3
	Sensor4
	Sensor5
)

// Count is the number of remote sensors tracked per snapshot.
const Count = 5

// Valid reports whether id names a known sensor.
func (id ID) Valid() bool {
	return id >= Sensor1 && id <= Sensor5
}

// Climate is sensor 1: battery powered temperature/humidity node.
type Climate struct {
	LastSeen    time.Time
	LowBattery  Reading[uint8]
	Temperature Reading[int16]
	Humidity    Reading[uint8]
	Vcc         Reading[uint8]
}

// Barometer is sensor 2.
type Barometer struct {
	LastSeen    time.Time
	Temperature Reading[int16]
	Humidity    Reading[uint8]
	Pressure    Reading[int16]
}

// SwitchClimate is sensor 3: two contacts plus temperature/humidity.
type SwitchClimate struct {
	LastSeen    time.Time
	LowBattery  Reading[uint8]
	Switch1     Reading[uint8]
	Switch2     Reading[uint8]
	Temperature Reading[int16]
	Humidity    Reading[uint8]
	Vcc         Reading[uint8]
}

// Runtime is sensor 4: reports an uptime counter.
type Runtime struct {
	LastSeen   time.Time
	LowBattery Reading[uint8]
	Vcc        Reading[uint8]
	Runtime    Reading[uint16]
}

// Contact is sensor 5: single switch with PCI indicator.
type Contact struct {
	LastSeen   time.Time
	LowBattery Reading[uint8]
	Vcc        Reading[uint8]
	Switch1    Reading[uint8]
	PCI1       Reading[uint8]
}

// Snapshot is one point-in-time record of every tracked sensor.
// The zero value has every reading absent and every LastSeen at the zero time.
type Snapshot struct {
	CapturedAt time.Time
	S1         Climate
	S2         Barometer
	S3         SwitchClimate
	S4         Runtime
	S5         Contact
}

// New returns an empty snapshot.
func New() Snapshot {
	return Snapshot{}
}

// Reset scrubs every field back to absent.
func (s *Snapshot) Reset() {
	*s = Snapshot{}
}

// IsBlank reports whether no field carries data.
func (s Snapshot) IsBlank() bool {
	return s == Snapshot{}
}

// LastSeen returns the last time a packet from id was decoded.
func (s Snapshot) LastSeen(id ID) time.Time {
	switch id {
	case Sensor1:
		return s.S1.LastSeen
	case Sensor2:
		return s.S2.LastSeen
	case Sensor3:
		return s.S3.LastSeen
	case Sensor4:
		return s.S4.LastSeen
	case Sensor5:
		return s.S5.LastSeen
	}
	return time.Time{}
}

// NumCodes is the number of wire columns emitted by Codes.
const NumCodes = 20

// Codes returns the wire codes of all readings in fixed column order.
// Absent readings are emitted as their sentinel.
func (s Snapshot) Codes() [NumCodes]int {
	return [NumCodes]int{
		int(s.S1.LowBattery.Code(NoLowBattery)),
		int(s.S1.Temperature.Code(NoTemperature)),
		int(s.S1.Humidity.Code(NoHumidity)),
		int(s.S1.Vcc.Code(NoVcc)),
		int(s.S2.Temperature.Code(NoTemperature)),
		int(s.S2.Humidity.Code(NoHumidity)),
		int(s.S2.Pressure.Code(NoPressure)),
		int(s.S3.LowBattery.Code(NoLowBattery)),
		int(s.S3.Switch1.Code(NoSwitch)),
		int(s.S3.Switch2.Code(NoSwitch)),
		int(s.S3.Vcc.Code(NoVcc)),
		int(s.S3.Temperature.Code(NoTemperature)),
		int(s.S3.Humidity.Code(NoHumidity)),
		int(s.S4.LowBattery.Code(NoLowBattery)),
		int(s.S4.Vcc.Code(NoVcc)),
		int(s.S4.Runtime.Code(NoRuntime)),
		int(s.S5.LowBattery.Code(NoLowBattery)),
		int(s.S5.Vcc.Code(NoVcc)),
		int(s.S5.Switch1.Code(NoSwitch)),
		int(s.S5.PCI1.Code(NoPCI)),
	}
}

// codeRange holds the integer range of each wire column.
var codeRange = [NumCodes][2]int{
	{0, math.MaxUint8}, {math.MinInt16, math.MaxInt16}, {0, math.MaxUint8}, {0, math.MaxUint8},
	{math.MinInt16, math.MaxInt16}, {0, math.MaxUint8}, {math.MinInt16, math.MaxInt16},
	{0, math.MaxUint8}, {0, math.MaxUint8}, {0, math.MaxUint8}, {0, math.MaxUint8},
	{math.MinInt16, math.MaxInt16}, {0, math.MaxUint8},
	{0, math.MaxUint8}, {0, math.MaxUint8}, {0, math.MaxUint16},
	{0, math.MaxUint8}, {0, math.MaxUint8}, {0, math.MaxUint8}, {0, math.MaxUint8},
}

// CodeInRange reports whether v fits the field type of column col.
func CodeInRange(col, v int) bool {
	if col < 0 || col >= NumCodes {
		return false
	}
	return v >= codeRange[col][0] && v <= codeRange[col][1]
}

// FromCodes is the inverse of Codes. Sentinel codes become absent readings.
// Callers check every code with CodeInRange first; out-of-range codes wrap.
// LastSeen and CapturedAt are not carried by the codes and stay zero.
func FromCodes(c [NumCodes]int) Snapshot {
	var s Snapshot
	s.S1.LowBattery = FromCode(uint8(c[0]), NoLowBattery)
	s.S1.Temperature = FromCode(int16(c[1]), NoTemperature)
	s.S1.Humidity = FromCode(uint8(c[2]), NoHumidity)
	s.S1.Vcc = FromCode(uint8(c[3]), NoVcc)
	s.S2.Temperature = FromCode(int16(c[4]), NoTemperature)
	s.S2.Humidity = FromCode(uint8(c[5]), NoHumidity)
	s.S2.Pressure = FromCode(int16(c[6]), NoPressure)
	s.S3.LowBattery = FromCode(uint8(c[7]), NoLowBattery)
	s.S3.Switch1 = FromCode(uint8(c[8]), NoSwitch)
	s.S3.Switch2 = FromCode(uint8(c[9]), NoSwitch)
	s.S3.Vcc = FromCode(uint8(c[10]), NoVcc)
	s.S3.Temperature = FromCode(int16(c[11]), NoTemperature)
	s.S3.Humidity = FromCode(uint8(c[12]), NoHumidity)
	s.S4.LowBattery = FromCode(uint8(c[13]), NoLowBattery)
	s.S4.Vcc = FromCode(uint8(c[14]), NoVcc)
	s.S4.Runtime = FromCode(uint16(c[15]), NoRuntime)
	s.S5.LowBattery = FromCode(uint8(c[16]), NoLowBattery)
	s.S5.Vcc = FromCode(uint8(c[17]), NoVcc)
	s.S5.Switch1 = FromCode(uint8(c[18]), NoSwitch)
	s.S5.PCI1 = FromCode(uint8(c[19]), NoPCI)
	return s
}
