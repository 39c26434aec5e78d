package app

import (
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/leap_spacecraft/internal/config"
	"github.com/relabs-tech/leap_spacecraft/internal/demo"
	"github.com/relabs-tech/leap_spacecraft/internal/hand"
	"github.com/relabs-tech/leap_spacecraft/internal/orientation"
	"github.com/relabs-tech/leap_spacecraft/internal/render"
)

// openHandSource picks the hand source named by HAND_SOURCE. client is
// only needed for the mqtt source and may be nil otherwise.
func openHandSource(cfg *config.Config, client mqtt.Client) (hand.Source, error) {
	switch cfg.HandSource {
	case config.HandSourceMock:
		log.Println("using mock hand source")
		return hand.NewMockSource(time.Duration(cfg.InputSampleInterval) * time.Millisecond), nil
	case config.HandSourceSerial:
		return hand.OpenSerialSource(cfg.HandSerialPort, cfg.HandBaudRate)
	case config.HandSourceMQTT:
		if client == nil {
			return nil, fmt.Errorf("hand source mqtt needs a broker connection")
		}
		return hand.NewMQTTSource(client, cfg.TopicHands)
	}
	return nil, fmt.Errorf("unknown hand source %q", cfg.HandSource)
}

// demoSettings maps the configuration onto demo.Settings. The planet mesh
// and calibration overrides only matter for the extended variant.
func demoSettings(cfg *config.Config) demo.Settings {
	s := demo.Settings{
		Extended: cfg.Variant == config.VariantExtended,
		Width:    cfg.ViewportWidth,
		Height:   cfg.ViewportHeight,
	}
	if s.Extended {
		s.PlanetMesh = render.PlanetMesh()
		s.Calibration = orientation.ExtendedCalibration
		if cfg.CalibrationRoll != nil {
			s.Calibration.Roll = *cfg.CalibrationRoll
		}
		if cfg.CalibrationPitch != nil {
			s.Calibration.Pitch = *cfg.CalibrationPitch
		}
		if cfg.CalibrationYaw != nil {
			s.Calibration.Yaw = *cfg.CalibrationYaw
		}
	}
	return s
}
