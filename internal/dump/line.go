// Package dump renders buffered snapshots as delimited text lines, the
// format the receiver has always written to its serial console.
package dump

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"sensor-receiver.klederson.com/internal/sensor"
)

// ErrMalformedLine is returned by ParseLine.
var ErrMalformedLine = errors.New("malformed snapshot line")

const (
	linePrefix = "UTC "
	dateLayout = "02.01.2006;15:04"
)

var epoch = time.Unix(0, 0).UTC()

// FormatLine renders one snapshot. Absent readings are written as their
// sentinel codes so consumers can tell "no data" from a real zero.
//
//	UTC 03 09.03.2024;14:05;0;21;48;33;255;255;2000;...
func FormatLine(idx int, s sensor.Snapshot) string {
	ts := s.CapturedAt.UTC()
	if s.CapturedAt.IsZero() {
		ts = epoch
	}

	var b strings.Builder
	b.Grow(128)
	fmt.Fprintf(&b, "%s%02d %s", linePrefix, idx, ts.Format(dateLayout))
	for _, c := range s.Codes() {
		b.WriteByte(';')
		b.WriteString(strconv.Itoa(c))
	}
	return b.String()
}

// ParseLine is the inverse of FormatLine. CapturedAt is restored to minute
// precision; per-sensor LastSeen is not part of the line.
func ParseLine(line string) (int, sensor.Snapshot, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, linePrefix) {
		return 0, sensor.Snapshot{}, errors.Wrap(ErrMalformedLine, "missing UTC prefix")
	}
	head, rest, ok := strings.Cut(strings.TrimPrefix(line, linePrefix), " ")
	if !ok {
		return 0, sensor.Snapshot{}, errors.Wrap(ErrMalformedLine, "missing index")
	}
	idx, err := strconv.Atoi(head)
	if err != nil {
		return 0, sensor.Snapshot{}, errors.Wrapf(ErrMalformedLine, "index %q", head)
	}

	fields := strings.Split(rest, ";")
	if len(fields) != 2+sensor.NumCodes {
		return 0, sensor.Snapshot{}, errors.Wrapf(ErrMalformedLine, "got %d fields, want %d", len(fields), 2+sensor.NumCodes)
	}
	ts, err := time.ParseInLocation(dateLayout, fields[0]+";"+fields[1], time.UTC)
	if err != nil {
		return 0, sensor.Snapshot{}, errors.Wrap(ErrMalformedLine, err.Error())
	}

	var codes [sensor.NumCodes]int
	for i := range codes {
		v, err := strconv.Atoi(fields[2+i])
		if err != nil {
			return 0, sensor.Snapshot{}, errors.Wrapf(ErrMalformedLine, "column %d: %q", i, fields[2+i])
		}
		if !sensor.CodeInRange(i, v) {
			return 0, sensor.Snapshot{}, errors.Wrapf(ErrMalformedLine, "column %d: %d out of range", i, v)
		}
		codes[i] = v
	}

	s := sensor.FromCodes(codes)
	if !ts.Equal(epoch) {
		s.CapturedAt = ts
	}
	return idx, s, nil
}
