package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-receiver.klederson.com/internal/config"
	"sensor-receiver.klederson.com/internal/receiver"
	"sensor-receiver.klederson.com/internal/sensor"
)

func sample() sensor.Snapshot {
	s := sensor.New()
	s.CapturedAt = time.Date(2024, 3, 9, 14, 5, 33, 0, time.UTC)
	s.S1.LowBattery = sensor.Some[uint8](0)
	s.S1.Temperature = sensor.Some[int16](21)
	s.S1.Humidity = sensor.Some[uint8](48)
	s.S1.Vcc = sensor.Some[uint8](33)
	s.S2.Pressure = sensor.Some[int16](1013)
	s.S4.Runtime = sensor.Some[uint16](0)
	return s
}

func TestFormatLine(t *testing.T) {
	got := FormatLine(3, sample())
	want := "UTC 03 09.03.2024;14:05;0;21;48;33;255;255;1013;255;255;255;255;255;255;255;255;0;255;255;255;255"
	assert.Equal(t, want, got)
}

func TestFormatLineBlankSnapshot(t *testing.T) {
	got := FormatLine(0, sensor.New())
	want := "UTC 00 01.01.1970;00:00;255;255;255;255;255;255;2000;255;255;255;255;255;255;255;255;1023;255;255;255;255"
	assert.Equal(t, want, got)
}

func TestFormatLineUsesUTC(t *testing.T) {
	s := sensor.New()
	s.CapturedAt = time.Date(2024, 1, 1, 0, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.True(t, strings.HasPrefix(FormatLine(1, s), "UTC 01 31.12.2023;23:30;"))
}

func TestParseLineRoundTrip(t *testing.T) {
	orig := sample()
	idx, got, err := ParseLine(FormatLine(7, orig) + "\r\n")
	require.NoError(t, err)

	want := orig
	want.CapturedAt = orig.CapturedAt.Truncate(time.Minute)
	assert.Equal(t, 7, idx)
	assert.Equal(t, want, got)

	_, blank, err := ParseLine(FormatLine(0, sensor.New()))
	require.NoError(t, err)
	assert.True(t, blank.IsBlank())
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"LOCAL 00 01.01.1970;00:00",
		"UTC xx 01.01.1970;00:00;" + strings.Repeat("1;", 19) + "1",
		"UTC 00 01.01.1970;00:00;1;2;3",
		"UTC 00 32.01.1970;00:00;" + strings.Repeat("1;", 19) + "1",
		"UTC 00 01.01.1970;00:00;" + strings.Repeat("1;", 19) + "z",
		"UTC 00 01.01.2024;00:00;256;21;48;33" + strings.Repeat(";255", 16),
		"UTC 00 01.01.2024;00:00;0;21;511;33" + strings.Repeat(";255", 16),
		"UTC 00 01.01.2024;00:00;-1;21;48;33" + strings.Repeat(";255", 16),
		"UTC 00 01.01.2024;00:00;0;40000;48;33" + strings.Repeat(";255", 16),
		"UTC 00 01.01.2024;00:00;" + strings.Repeat("0;", 15) + "65536;0;0;0;0",
	} {
		_, _, err := ParseLine(line)
		require.Error(t, err, line)
		assert.Equal(t, ErrMalformedLine, errors.Cause(err), line)
	}
}

func TestParseLineAcceptsFieldLimits(t *testing.T) {
	line := "UTC 00 01.01.2024;00:00;0;-32768;254;33;32767" + strings.Repeat(";255", 10) + ";65535;0;0;0;0"
	_, s, err := ParseLine(line)
	require.NoError(t, err)
	assert.Equal(t, sensor.Some[int16](-32768), s.S1.Temperature)
	assert.Equal(t, sensor.Some[uint16](65535), s.S4.Runtime)
}

func TestWriterDump(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	a, b := sample(), sample()
	b.S3.Switch1 = sensor.Some[uint8](1)

	n, err := w.Dump(slices.All([]sensor.Snapshot{a, b}))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, FormatLine(0, a), lines[0])
	assert.Equal(t, FormatLine(1, b), lines[1])
}

func TestWriterDumpEmptyIsNoop(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewWriter(&buf, nil).Dump(slices.All([]sensor.Snapshot(nil)))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Zero(t, buf.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("tty gone") }

func TestWriterDumpStopsOnError(t *testing.T) {
	n, err := NewWriter(failingWriter{}, nil).Dump(slices.All([]sensor.Snapshot{sample(), sample()}))
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

type fakeToken struct {
	err error
}

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Error() error                   { return t.err }

func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakePublisher struct {
	topics   []string
	payloads []string
	err      error
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, string(payload.([]byte)))
	return fakeToken{err: p.err}
}

func TestMQTTWriterPublishesLines(t *testing.T) {
	pub := &fakePublisher{}
	w := NewWriter(NewMQTTWriter(pub, "sensors/snapshots", true), nil)

	_, err := w.Dump(slices.All([]sensor.Snapshot{sample()}))
	require.NoError(t, err)

	assert.Equal(t, []string{"sensors/snapshots"}, pub.topics)
	assert.Equal(t, []string{FormatLine(0, sample())}, pub.payloads)
}

func TestMQTTWriterReportsPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}

	_, err := NewMQTTWriter(pub, "t", true).Write([]byte("x\n"))
	assert.ErrorContains(t, err, "not connected")

	n, err := NewMQTTWriter(pub, "t", false).Write([]byte("x\n"))
	assert.NoError(t, err, "fire-and-forget ignores publish errors")
	assert.Equal(t, 2, n)
}

func TestOpenFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial.log")
	cfg := &config.Config{Sink: config.SinkFile, SinkPath: path}

	sink, err := Open(cfg, nil)
	require.NoError(t, err)
	_, err = NewWriter(sink, nil).Dump(slices.All([]sensor.Snapshot{sample()}))
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatLine(0, sample())+"\n", string(data))
}

func TestOpenMQTTSinkReusesClient(t *testing.T) {
	cfg := &config.Config{Sink: config.SinkMQTT, MQTTTopic: "x"}
	sink, err := Open(cfg, mqtt.NewClient(mqtt.NewClientOptions()))
	require.NoError(t, err)
	assert.NoError(t, sink.Close(), "a borrowed client is not disconnected")
}

func TestOpenUnknownSink(t *testing.T) {
	_, err := Open(&config.Config{Sink: "pigeon"}, nil)
	assert.Error(t, err)
}

func TestSinkCloseAggregatesErrors(t *testing.T) {
	s := &Sink{closers: []func() error{
		func() error { return errors.New("first") },
		func() error { return errors.New("second") },
	}}
	err := s.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestFlush(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := receiver.NewCollector(3, config.DropOldest, logger, nil)
	c.Capture(sample().CapturedAt)
	c.Capture(sample().CapturedAt.Add(time.Minute))

	var buf bytes.Buffer
	n, err := Flush(NewWriter(&buf, nil), c, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, c.Len(), "plain flush keeps the buffer")

	buf.Reset()
	n, err = Flush(NewWriter(&buf, nil), c, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, c.Len())
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestFlushDrainKeepsUnwritten(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := receiver.NewCollector(3, config.DropOldest, logger, nil)
	c.Capture(sample().CapturedAt)

	_, err := Flush(NewWriter(failingWriter{}, nil), c, true)
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestWriterConcurrentDumps(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	snaps := []sensor.Snapshot{sample(), sample(), sample()}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.Dump(slices.All(snaps))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var got []string
	w.WithLock(func() {
		got = strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	})
	require.Len(t, got, 24)
	for i, line := range got {
		assert.Equal(t, FormatLine(i%3, sample()), line, "dumps must not interleave")
	}
}
