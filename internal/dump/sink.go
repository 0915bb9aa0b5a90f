package dump

import (
	"io"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"sensor-receiver.klederson.com/internal/config"
)

// Sink is a line destination. Close releases everything Open acquired.
type Sink struct {
	io.Writer
	closers []func() error
}

// Close runs the release functions in reverse order and reports all failures.
func (s *Sink) Close() error {
	var errs *multierror.Error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	s.closers = nil
	return errs.ErrorOrNil()
}

// Open creates the sink selected by cfg.Sink. For the mqtt sink, client is
// reused when non-nil, otherwise a connection is dialed and closed with the
// sink.
func Open(cfg *config.Config, client mqtt.Client) (*Sink, error) {
	switch cfg.Sink {
	case config.SinkStdout:
		return &Sink{Writer: os.Stdout}, nil

	case config.SinkFile:
		f, err := os.OpenFile(cfg.SinkPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "opening file sink")
		}
		return &Sink{Writer: f, closers: []func() error{f.Close}}, nil

	case config.SinkMQTT:
		s := &Sink{}
		if client == nil {
			c, err := DialMQTT(cfg.MQTTBroker, cfg.MQTTClientID)
			if err != nil {
				return nil, err
			}
			client = c
			s.closers = append(s.closers, func() error {
				c.Disconnect(250)
				return nil
			})
		}
		s.Writer = NewMQTTWriter(client, cfg.MQTTTopic, true)
		return s, nil
	}
	return nil, errors.Errorf("unknown sink %q", cfg.Sink)
}
