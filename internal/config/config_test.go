package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-receiver.klederson.com/internal/i18n"
)

func newViper(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	t.Chdir(t.TempDir())
	v := viper.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs, v))
	require.NoError(t, fs.Parse(args))
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultCapacity, cfg.Capacity)
	assert.Equal(t, DefaultCaptureInterval, cfg.CaptureInterval)
	assert.Equal(t, DropOldest, cfg.Overflow)
	assert.Equal(t, SinkStdout, cfg.Sink)
	assert.Equal(t, i18n.English, cfg.Lang())
	assert.True(t, strings.HasPrefix(cfg.MQTTClientID, "sensor-receiver-"))
}

func TestLoadFlagsAndEnv(t *testing.T) {
	v := newViper(t, "--capacity=8", "--language=de", "--capture-interval=30s")
	t.Setenv("SENSOR_RECEIVER_OVERFLOW", DropNewest)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Capacity)
	assert.Equal(t, 30*time.Second, cfg.CaptureInterval)
	assert.Equal(t, DropNewest, cfg.Overflow)
	assert.Equal(t, i18n.German, cfg.Lang())
}

func TestLoadConfigFile(t *testing.T) {
	v := newViper(t)
	yaml := "capacity: 12\nsink: file\nsink_path: /dev/ttyUSB0\nmqtt_client_id: rx-1\n"
	require.NoError(t, os.WriteFile(filepath.Join(".", ConfigName+".yaml"), []byte(yaml), 0o644))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Capacity)
	assert.Equal(t, SinkFile, cfg.Sink)
	assert.Equal(t, "/dev/ttyUSB0", cfg.SinkPath)
	assert.Equal(t, "rx-1", cfg.MQTTClientID)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Config{
		Capacity:        0,
		CaptureInterval: 0,
		DumpInterval:    time.Second,
		Overflow:        "drop-everything",
		Sink:            SinkFile,
		Language:        "fr",
		LogLevel:        "loud",
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"capacity", "capture_interval", "overflow", "sink_path", "language", "loud"} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateCapacityOne(t *testing.T) {
	cfg := Config{
		Capacity:        1,
		CaptureInterval: time.Second,
		DumpInterval:    time.Second,
		Overflow:        DropOldest,
		Sink:            SinkStdout,
		Language:        "en",
		LogLevel:        "debug",
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoadMalformedConfigFile(t *testing.T) {
	v := newViper(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ConfigName+".yaml"), []byte("capacity: [12\n"), 0o644))

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
	assert.IsType(t, viper.ConfigParseError{}, errors.Cause(err))
}
