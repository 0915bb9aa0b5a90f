package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sensor-receiver.klederson.com/internal/i18n"
)

const (
	// Buffer
	DefaultCapacity = 24 // Snapshot slots in the reference deployment

	// Receiver
	CompanyID              = 0xFFFF          // BLE manufacturer id used by the sensor nodes
	DefaultCaptureInterval = 5 * time.Minute // How often the current record is stamped into the buffer
	DefaultDumpInterval    = time.Minute     // How often the dump command writes the buffer out
	DemoPacketInterval     = 700 * time.Millisecond

	// TUI
	TargetFPS = 10

	// App
	AppName    = "SENSOR-RX"
	AppVersion = "1.0"
	EnvPrefix  = "SENSOR_RECEIVER"
	ConfigName = "sensor-receiver"
)

// Overflow policies applied by the collector when the buffer is full.
const (
	DropOldest = "drop-oldest"
	DropNewest = "drop-newest"
)

// Sink kinds for rendered snapshot lines.
const (
	SinkStdout = "stdout"
	SinkFile   = "file"
	SinkMQTT   = "mqtt"
)

// Config holds the resolved runtime settings.
type Config struct {
	Capacity        int           `mapstructure:"capacity"`
	CaptureInterval time.Duration `mapstructure:"capture_interval"`
	DumpInterval    time.Duration `mapstructure:"dump_interval"`
	Overflow        string        `mapstructure:"overflow"`
	Drain           bool          `mapstructure:"drain"`

	Demo    bool   `mapstructure:"demo"`
	Adapter string `mapstructure:"adapter"`

	Language string `mapstructure:"language"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
	LogMQTT  bool   `mapstructure:"log_mqtt"`

	Sink     string `mapstructure:"sink"`
	SinkPath string `mapstructure:"sink_path"`

	MQTTBroker   string `mapstructure:"mqtt_broker"`
	MQTTTopic    string `mapstructure:"mqtt_topic"`
	MQTTClientID string `mapstructure:"mqtt_client_id"`

	HTTPAddr string `mapstructure:"http_addr"`
}

// Lang returns the parsed display language. Load has already validated it.
func (c *Config) Lang() i18n.Language {
	lang, err := i18n.ParseLanguage(c.Language)
	if err != nil {
		return i18n.English
	}
	return lang
}

// BindFlags registers the command line flags and binds them to v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.Int("capacity", DefaultCapacity, "Number of snapshot slots in the ring buffer")
	fs.Duration("capture-interval", DefaultCaptureInterval, "Interval between snapshots")
	fs.Duration("dump-interval", DefaultDumpInterval, "Interval between buffer dumps (dump command)")
	fs.String("overflow", DropOldest, "Policy when the buffer is full: drop-oldest or drop-newest")
	fs.Bool("drain", false, "Remove snapshots from the buffer once they have been dumped")
	fs.Bool("demo", false, "Run with simulated sensors (no Bluetooth required)")
	fs.String("adapter", "hci0", "Bluetooth adapter to use")
	fs.String("language", string(i18n.English), "Display language (en, de)")
	fs.String("log-level", "info", "Log level")
	fs.String("log-file", "", "Write logs to this file instead of stderr")
	fs.Bool("log-mqtt", false, "Also publish logs to MQTT logs/<app>")
	fs.String("sink", SinkStdout, "Dump sink: stdout, file or mqtt")
	fs.String("sink-path", "", "File or serial device for the file sink")
	fs.String("mqtt-broker", "tcp://localhost:1883", "MQTT broker URL")
	fs.String("mqtt-topic", "sensors/snapshots", "MQTT topic for dumped lines")
	fs.String("mqtt-client-id", "", "MQTT client id (default: random)")
	fs.String("http-addr", "", "Serve /health, /metrics and /snapshots on this address")

	var errs *multierror.Error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			errs = multierror.Append(errs, err)
		}
	})
	return errs.ErrorOrNil()
}

// Load reads the optional config file and environment on top of the flag
// defaults, then validates the result.
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, "."+ConfigName))
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "error reading config file")
		}
	} else {
		logrus.WithField("file", v.ConfigFileUsed()).Debug("Using config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	if cfg.MQTTClientID == "" {
		cfg.MQTTClientID = "sensor-receiver-" + uuid.NewString()[:8]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs *multierror.Error
	if c.Capacity < 1 {
		errs = multierror.Append(errs, errors.Errorf("capacity must be at least 1, got %d", c.Capacity))
	}
	if c.CaptureInterval <= 0 {
		errs = multierror.Append(errs, errors.Errorf("capture_interval must be positive, got %s", c.CaptureInterval))
	}
	if c.DumpInterval <= 0 {
		errs = multierror.Append(errs, errors.Errorf("dump_interval must be positive, got %s", c.DumpInterval))
	}
	switch c.Overflow {
	case DropOldest, DropNewest:
	default:
		errs = multierror.Append(errs, errors.Errorf("unknown overflow policy %q", c.Overflow))
	}
	switch c.Sink {
	case SinkStdout, SinkMQTT:
	case SinkFile:
		if c.SinkPath == "" {
			errs = multierror.Append(errs, errors.New("sink_path is required for the file sink"))
		}
	default:
		errs = multierror.Append(errs, errors.Errorf("unknown sink %q", c.Sink))
	}
	if (c.Sink == SinkMQTT || c.LogMQTT) && c.MQTTBroker == "" {
		errs = multierror.Append(errs, errors.New("mqtt_broker is required for MQTT output"))
	}
	if _, err := i18n.ParseLanguage(c.Language); err != nil {
		errs = multierror.Append(errs, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
