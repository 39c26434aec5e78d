package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/leap_spacecraft/internal/config"
	"github.com/relabs-tech/leap_spacecraft/internal/demo"
	"github.com/relabs-tech/leap_spacecraft/internal/hand"
)

// RunConsoleMQTT prints hand frames and scene state as they are published.
func RunConsoleMQTT(ctx context.Context) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	handsToken := client.Subscribe(cfg.TopicHands, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f hand.Frame
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("console: frame unmarshal error: %v", err)
			return
		}
		for _, h := range f.Hands {
			fmt.Printf(
				"[HAND %s]  ROLL=%6.3f  PITCH=%6.3f  YAW=%6.3f\n",
				h.ID, h.Reading.Roll, h.Reading.Pitch, h.Reading.Yaw,
			)
		}
	})
	handsToken.Wait()
	if handsToken.Error() != nil {
		return handsToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicHands)

	sceneToken := client.Subscribe(cfg.TopicScene, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st demo.State
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("console: scene unmarshal error: %v", err)
			return
		}
		fmt.Println(formatState(st))
	})
	sceneToken.Wait()
	if sceneToken.Error() != nil {
		return sceneToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicScene)

	<-ctx.Done()

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func formatState(st demo.State) string {
	return fmt.Sprintf(
		"[SCENE] rot x=%6.3f y=%6.3f z=%6.3f  hands=%d  lights=%s %.2f/%.2f  fov=%.1f",
		st.Rotation.X, st.Rotation.Y, st.Rotation.Z,
		st.Tracking, st.LightState, st.Lights.Hemisphere, st.Lights.Directional, st.FOV,
	)
}
