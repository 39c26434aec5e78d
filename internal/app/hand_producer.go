package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/leap_spacecraft/internal/config"
	"github.com/relabs-tech/leap_spacecraft/internal/hand"
)

// Log one line per this many published frames.
const producerLogEvery = 120

// RunHandProducer reads frames from the mock or serial hand source and
// publishes them as JSON to TopicHands.
func RunHandProducer(ctx context.Context) error {
	cfg := config.Get()
	if cfg.HandSource == config.HandSourceMQTT {
		return fmt.Errorf("hand producer needs HAND_SOURCE mock or serial, got %q", cfg.HandSource)
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	src, err := openHandSource(cfg, nil)
	if err != nil {
		return err
	}

	return produceHands(ctx, src, client, cfg.TopicHands)
}

// produceHands publishes every frame from src until ctx is done. On the
// way out it publishes an empty frame so subscribers see tracked hands
// leave instead of keeping the last ones forever.
func produceHands(ctx context.Context, src hand.Source, client publisher, topic string) error {
	var entry hand.EntryTracker
	var published, seq int64
	for {
		f, err := src.Next(ctx)
		if err != nil {
			if entry.Tracked() > 0 {
				last := hand.Frame{Seq: seq + 1, Time: time.Now()}
				if perr := publishJSON(client, topic, last); perr != nil {
					log.Printf("producer: %v", perr)
				}
			}
			if errors.Is(err, context.Canceled) {
				log.Println("producer: shutting down")
				return nil
			}
			return err
		}
		seq = f.Seq

		for _, ev := range entry.Update(f) {
			log.Printf("producer: hand %s %s", ev.HandID, ev.Kind)
		}

		if err := publishJSON(client, topic, f); err != nil {
			log.Printf("producer: %v", err)
			continue
		}

		published++
		if published%producerLogEvery == 0 {
			log.Printf("producer: %d frames published, %d hands tracked", published, entry.Tracked())
		}
	}
}
