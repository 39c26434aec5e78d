package hand

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// frameBuffer bounds how far the consumer may fall behind the broker.
// When full, the oldest pending frame is dropped.
const frameBuffer = 32

type mqttSource struct {
	frames chan Frame
}

// NewMQTTSource subscribes to topic on an already connected client and
// delivers the JSON frames published there.
func NewMQTTSource(client mqtt.Client, topic string) (Source, error) {
	src := &mqttSource{frames: make(chan Frame, frameBuffer)}

	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f Frame
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("hand: frame unmarshal error: %v", err)
			return
		}
		src.push(f)
	})
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	log.Printf("hand: subscribed to %s", topic)
	return src, nil
}

func (s *mqttSource) push(f Frame) {
	for {
		select {
		case s.frames <- f:
			return
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}

func (s *mqttSource) Next(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case f := <-s.frames:
		return f, nil
	}
}
