// Package i18n holds the display string tables.
package i18n

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Language selects one of the parallel string sets.
type Language string

const (
	English Language = "en"
	German  Language = "de"
)

// MsgID identifies a display string.
type MsgID int

const (
	IdleTimeInSeconds MsgID = iota
	SensorThreshold
	LoRaPacket
	Confirmed
	Sent
	VBatLoader
	Empty
	Full
	DisplayMode
	SerialPrintEnabled
	FactoryDefault
	Sound
	Minimal
	Maximal
	On
	Off
	Yes
	No
	Start
	Battery
	IdleTime
	Threshold
	Display
	Serial
	LoRaTest
	Info
	Reset
	Restart
	CouldNotStartRotaryEncoder
	Init
	CouldNotFindLoRa
	CouldNotFindMPU
	Fin
	Partial
	Buffer
	Captured
	Sensor
	Paused
	Receiving

	numMsgIDs
)

// ErrUnknownLanguage is returned by ParseLanguage.
var ErrUnknownLanguage = errors.New("unknown display language")

var tables = map[Language][numMsgIDs]string{
	German: {
		IdleTimeInSeconds:          "Ruhezeit in Sekunden",
		SensorThreshold:            "Sensorschwelle",
		LoRaPacket:                 "LoRa-Paket",
		Confirmed:                  "Zugestellt",
		Sent:                       "Gesendet",
		VBatLoader:                 "Akku-/Ladespannung",
		Empty:                      "Leer",
		Full:                       "Voll",
		DisplayMode:                "Anzeigemodus",
		SerialPrintEnabled:         "Serial.print aktiv",
		FactoryDefault:             "Werkseinstellungen",
		Sound:                      "Sound",
		Minimal:                    "Minimal",
		Maximal:                    "Maximal",
		On:                         "Ein",
		Off:                        "Aus",
		Yes:                        "Ja",
		No:                         "Nein",
		Start:                      "Start",
		Battery:                    "Batterie",
		IdleTime:                   "Ruhezeit",
		Threshold:                  "Schwelle",
		Display:                    "Display",
		Serial:                     "Serial",
		LoRaTest:                   "LoRa-Test",
		Info:                       "Info",
		Reset:                      "Reset",
		Restart:                    "Neustart",
		CouldNotStartRotaryEncoder: "Rotary Encoder konnte\nnicht gestartet\nwerden!",
		Init:                       "Init...",
		CouldNotFindLoRa:           "LoRa-Modul\nnicht gefunden!",
		CouldNotFindMPU:            "MPU6050 nicht gefunden!",
		Fin:                        "Fertig",
		Partial:                    "Teilweise",
		Buffer:                     "Puffer",
		Captured:                   "Erfasst",
		Sensor:                     "Sensor",
		Paused:                     "Pausiert",
		Receiving:                  "Empfang",
	},
	English: {
		IdleTimeInSeconds:          "Idle time in seconds",
		SensorThreshold:            "Sensorthreshold",
		LoRaPacket:                 "LoRa packet",
		Confirmed:                  "Confirmed",
		Sent:                       "Sent",
		VBatLoader:                 "Battery-/Loadvoltage",
		Empty:                      "Empty",
		Full:                       "Full",
		DisplayMode:                "Display mode",
		SerialPrintEnabled:         "Serial.print enabled",
		FactoryDefault:             "To factory default",
		Sound:                      "Sound",
		Minimal:                    "Minimal",
		Maximal:                    "Maximal",
		On:                         "On",
		Off:                        "Off",
		Yes:                        "Yes",
		No:                         "No",
		Start:                      "Start",
		Battery:                    "Battery",
		IdleTime:                   "Idle time",
		Threshold:                  "Threshold",
		Display:                    "Display",
		Serial:                     "Serial",
		LoRaTest:                   "LoRa test",
		Info:                       "Info",
		Reset:                      "Reset",
		Restart:                    "Restart",
		CouldNotStartRotaryEncoder: "Could not start\nrotary encoder!",
		Init:                       "Init...",
		CouldNotFindLoRa:           "LoRa modul\nnot found!",
		CouldNotFindMPU:            "MPU6050 not found!",
		Fin:                        "Done",
		Partial:                    "Partial",
		Buffer:                     "Buffer",
		Captured:                   "Captured",
		Sensor:                     "Sensor",
		Paused:                     "Paused",
		Receiving:                  "Receiving",
	},
}

// ParseLanguage maps a config value such as "de" or "EN" to a Language.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tables[lang]; !ok {
		return "", errors.Wrapf(ErrUnknownLanguage, "%q", s)
	}
	return lang, nil
}

// Languages returns the supported languages in sorted order.
func Languages() []Language {
	out := make([]Language, 0, len(tables))
	for l := range tables {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IDs returns every message identifier.
func IDs() []MsgID {
	out := make([]MsgID, numMsgIDs)
	for i := range out {
		out[i] = MsgID(i)
	}
	return out
}

// Lookup returns the string for id in lang. Unknown languages fall back to
// English; ids outside the table return "".
func Lookup(lang Language, id MsgID) string {
	if id < 0 || id >= numMsgIDs {
		return ""
	}
	t, ok := tables[lang]
	if !ok {
		t = tables[English]
	}
	return t[id]
}

// Strings is a language-bound lookup.
type Strings struct {
	lang Language
}

// For binds lookups to lang.
func For(lang Language) Strings {
	return Strings{lang: lang}
}

// Language returns the bound language.
func (s Strings) Language() Language {
	return s.lang
}

// Get returns the string for id.
func (s Strings) Get(id MsgID) string {
	return Lookup(s.lang, id)
}
