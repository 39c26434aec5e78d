package app

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/leap_spacecraft/internal/config"
	"github.com/relabs-tech/leap_spacecraft/internal/demo"
)

// panelData holds the latest scene state for the OLED.
type panelData struct {
	mu    sync.RWMutex
	state demo.State
	have  bool
}

// RunDisplay mirrors the scene state published on TopicScene onto an
// SSD1306 panel: rotation in degrees and the lighting state.
func RunDisplay(ctx context.Context) error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: panel initialized on bus %q", cfg.DisplayI2CBus)

	if err := dev.Draw(dev.Bounds(), splash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &panelData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicScene, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st demo.State
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("display: scene unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.state = st
		data.have = true
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicScene)

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		data.mu.RLock()
		st, have := data.state, data.have
		data.mu.RUnlock()

		if err := dev.Draw(dev.Bounds(), drawPanel(st, have), image.Point{}); err != nil {
			log.Printf("display: error updating panel: %v", err)
		}
	}
}

func newPanel() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

func splash() *image1bit.VerticalLSB {
	img, d := newPanel()
	drawLine(d, 20, 26, "Spacecraft")
	drawLine(d, 10, 43, "Show a hand")
	return img
}

// drawPanel renders rotation (degrees), tracked hands and light levels.
func drawPanel(st demo.State, have bool) *image1bit.VerticalLSB {
	img, d := newPanel()
	if !have {
		drawLine(d, 0, 26, "Spacecraft")
		drawLine(d, 0, 39, "Waiting...")
		return img
	}

	toDeg := 180 / math.Pi
	drawLine(d, 0, 13, fmt.Sprintf("X:%6.1f Y:%6.1f", st.Rotation.X*toDeg, st.Rotation.Y*toDeg))
	drawLine(d, 0, 26, fmt.Sprintf("Z:%6.1f H:%d", st.Rotation.Z*toDeg, st.Tracking))
	drawLine(d, 0, 39, fmt.Sprintf("%s %.2f/%.2f", st.LightState, st.Lights.Hemisphere, st.Lights.Directional))

	// directional intensity as a bar along the bottom row
	w := int(math.Round(math.Max(0, math.Min(1, st.Lights.Directional)) * 127))
	for x := 0; x <= w; x++ {
		for y := 58; y < 64; y++ {
			img.SetBit(x, y, image1bit.On)
		}
	}
	return img
}
