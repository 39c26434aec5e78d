// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/leap_spacecraft/internal/config"
	"github.com/relabs-tech/leap_spacecraft/internal/demo"
	"github.com/relabs-tech/leap_spacecraft/internal/loop"
	"github.com/relabs-tech/leap_spacecraft/internal/render"
)

// Headless frames only feed /api/frame.png, so they are rendered less
// often than the tick rate.
const snapshotInterval = 100 * time.Millisecond

const queueSize = 256

// statePublisher wraps the app on the loop goroutine and pushes a state
// snapshot to the hub and MQTT at most once per interval.
type statePublisher struct {
	app      *demo.App
	hub      *sceneHub
	client   mqtt.Client
	topic    string
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func (p *statePublisher) Handle(ev loop.Event) {
	p.app.Handle(ev)

	if ev.Kind != loop.KindTick && ev.Kind != loop.KindModel {
		return
	}
	now := p.now()
	if ev.Kind == loop.KindTick && now.Sub(p.last) < p.interval {
		return
	}
	p.last = now

	payload, err := p.hub.publish(p.app.Snapshot())
	if err != nil {
		log.Printf("demo: state marshal error: %v", err)
		return
	}
	if p.client != nil {
		p.client.Publish(p.topic, 0, false, payload)
	}
}

// RunDemo runs the spacecraft scene headless: hands from HAND_SOURCE,
// render ticks at RENDER_FPS, scene state on MQTT and the web server.
func RunDemo(ctx context.Context) error {
	cfg := config.Get()
	log.Printf("demo: variant %s, hand source %s", cfg.Variant, cfg.HandSource)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDemo)
	if err != nil {
		if cfg.HandSource == config.HandSourceMQTT {
			return err
		}
		log.Printf("demo: running without MQTT: %v", err)
		client = nil
	} else {
		defer client.Disconnect(250)
		log.Printf("demo: connected to MQTT broker at %s", cfg.MQTTBroker)
	}

	src, err := openHandSource(cfg, client)
	if err != nil {
		return err
	}

	settings := demoSettings(cfg)
	sw := render.NewSoftware(settings.Width, settings.Height, snapshotInterval)
	a := demo.New(settings, sw, nil)
	a.Init()

	hub := newSceneHub()
	pub := &statePublisher{
		app:      a,
		hub:      hub,
		client:   client,
		topic:    cfg.TopicScene,
		interval: time.Duration(cfg.ScenePublishInterval) * time.Millisecond,
		now:      time.Now,
	}

	q := loop.NewQueue(queueSize)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler: newWebMux(hub, sw),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return q.Run(ctx, pub) })
	g.Go(func() error { return loop.RunInput(ctx, q, src) })
	g.Go(func() error { return loop.RunRender(ctx, q, cfg.RenderFPS) })
	g.Go(func() error {
		return loop.Load(ctx, q, render.MeshLoader{}, cfg.ModelPath)
	})
	g.Go(func() error {
		log.Printf("web: server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Println("demo: shutting down")
		return nil
	}
	return err
}
