package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Variant selects which tuning of the demo runs.
type Variant string

const (
	// VariantBase is the spacecraft-only scene with uncalibrated input.
	VariantBase Variant = "base"
	// VariantExtended adds calibration offsets, the planet and fov tracking.
	VariantExtended Variant = "extended"
)

// Hand sources.
const (
	HandSourceMock   = "mock"
	HandSourceSerial = "serial"
	HandSourceMQTT   = "mqtt"
)

// Config holds all application configuration values.
type Config struct {
	Variant   Variant
	ModelPath string

	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDDemo     string
	MQTTClientIDConsole  string
	MQTTClientIDDisplay  string

	// Topics
	TopicHands string
	TopicScene string

	// Hand input
	HandSource          string
	HandSerialPort      string
	HandBaudRate        int
	InputSampleInterval int // milliseconds

	// Calibration overrides for the extended variant (radians).
	// Nil means the built-in offsets apply.
	CalibrationRoll  *float64
	CalibrationPitch *float64
	CalibrationYaw   *float64

	// Rendering
	RenderFPS      int
	ViewportWidth  int
	ViewportHeight int

	// Web Server
	WebServerPort        int
	ScenePublishInterval int // milliseconds

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds
}

// Package-level singleton, guarded the same way for every reader:
//   - globalConfig is only set through InitGlobal.
//   - configOnce makes repeated InitGlobal calls harmless.
//   - configMu lets Get run concurrently with other readers.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a configuration that runs the base variant against a
// local broker with the mock hand source.
func Default() *Config {
	return &Config{
		Variant:               VariantBase,
		ModelPath:             "models/manta.stl",
		MQTTBroker:            "tcp://localhost:1883",
		MQTTClientIDProducer:  "spacecraft-hand-producer",
		MQTTClientIDDemo:      "spacecraft-demo",
		MQTTClientIDConsole:   "spacecraft-console",
		MQTTClientIDDisplay:   "spacecraft-display",
		TopicHands:            "spacecraft/hands",
		TopicScene:            "spacecraft/scene",
		HandSource:            HandSourceMock,
		HandSerialPort:        "/dev/ttyUSB0",
		HandBaudRate:          115200,
		InputSampleInterval:   16,
		RenderFPS:             60,
		ViewportWidth:         960,
		ViewportHeight:        540,
		WebServerPort:         8080,
		ScenePublishInterval:  100,
		DisplayUpdateInterval: 200,
	}
}

// Load reads the configuration file and returns a Config struct.
// Keys missing from the file keep their Default values.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines from r on top of Default.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parsePositive(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func parseAngle(key, value string) (*float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return &f, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	case "VARIANT":
		switch Variant(value) {
		case VariantBase, VariantExtended:
			c.Variant = Variant(value)
		default:
			return fmt.Errorf("VARIANT must be %q or %q, got %q", VariantBase, VariantExtended, value)
		}
	case "MODEL_PATH":
		c.ModelPath = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_DEMO":
		c.MQTTClientIDDemo = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_HANDS":
		c.TopicHands = value
	case "TOPIC_SCENE":
		c.TopicScene = value

	// Hand input
	case "HAND_SOURCE":
		switch value {
		case HandSourceMock, HandSourceSerial, HandSourceMQTT:
			c.HandSource = value
		default:
			return fmt.Errorf("HAND_SOURCE must be mock, serial or mqtt, got %q", value)
		}
	case "HAND_SERIAL_PORT":
		c.HandSerialPort = value
	case "HAND_BAUD_RATE":
		c.HandBaudRate, err = parsePositive(key, value)
	case "INPUT_SAMPLE_INTERVAL":
		c.InputSampleInterval, err = parsePositive(key, value)

	// Calibration
	case "CALIBRATION_ROLL":
		c.CalibrationRoll, err = parseAngle(key, value)
	case "CALIBRATION_PITCH":
		c.CalibrationPitch, err = parseAngle(key, value)
	case "CALIBRATION_YAW":
		c.CalibrationYaw, err = parseAngle(key, value)

	// Rendering
	case "RENDER_FPS":
		c.RenderFPS, err = parsePositive(key, value)
	case "VIEWPORT_WIDTH":
		c.ViewportWidth, err = parsePositive(key, value)
	case "VIEWPORT_HEIGHT":
		c.ViewportHeight, err = parsePositive(key, value)

	// Web Server
	case "WEB_SERVER_PORT":
		port, perr := strconv.Atoi(value)
		if perr != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, perr)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", port)
		}
		c.WebServerPort = port
	case "SCENE_PUBLISH_INTERVAL":
		c.ScenePublishInterval, err = parsePositive(key, value)

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parsePositive(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.MQTTBroker == "" && c.HandSource == HandSourceMQTT {
		return errors.New("MQTT_BROKER is required when HAND_SOURCE=mqtt")
	}
	if c.TopicHands == "" {
		return errors.New("TOPIC_HANDS is required")
	}
	if c.TopicScene == "" {
		return errors.New("TOPIC_SCENE is required")
	}
	if c.HandSource == HandSourceSerial && c.HandSerialPort == "" {
		return errors.New("HAND_SERIAL_PORT is required when HAND_SOURCE=serial")
	}
	if c.ModelPath == "" {
		return errors.New("MODEL_PATH is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
