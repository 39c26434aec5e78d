//go:build !noviewer

package app

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/relabs-tech/leap_spacecraft/internal/config"
	"github.com/relabs-tech/leap_spacecraft/internal/demo"
	"github.com/relabs-tech/leap_spacecraft/internal/loop"
	"github.com/relabs-tech/leap_spacecraft/internal/render"
)

// errViewerClosed ends ebiten.RunGame when the context is cancelled.
var errViewerClosed = errors.New("viewer closed")

// debugOverlay is the on-screen roll/pitch/yaw text.
type debugOverlay struct {
	text string
}

func (d *debugOverlay) SetText(s string) { d.text = s }

type viewerGame struct {
	ctx     context.Context
	app     *demo.App
	queue   *loop.Queue
	sw      *render.Software
	overlay *debugOverlay

	rgba  *image.RGBA
	img   *ebiten.Image
	last  time.Time
	outW  int
	outH  int
	seenN int64
}

// RunViewer opens a desktop window and runs the scene with ebiten's 60Hz
// update loop as the render tick. Hand frames come from HAND_SOURCE.
func RunViewer(ctx context.Context) error {
	cfg := config.Get()

	var client mqtt.Client
	if cfg.HandSource == config.HandSourceMQTT {
		c, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDemo)
		if err != nil {
			return err
		}
		defer c.Disconnect(250)
		client = c
	}

	src, err := openHandSource(cfg, client)
	if err != nil {
		return err
	}

	settings := demoSettings(cfg)
	w, h := renderSize(settings.Width, settings.Height)
	sw := render.NewSoftware(w, h, viewerInterval)
	overlay := &debugOverlay{}
	a := demo.New(settings, sw, overlay)
	a.Init()

	q := loop.NewQueue(queueSize)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := loop.RunInput(ctx, q, src); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("viewer: %v", err)
		}
	}()
	go func() {
		if err := loop.Load(ctx, q, render.MeshLoader{}, cfg.ModelPath); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("viewer: %v", err)
		}
	}()

	g := &viewerGame{ctx: ctx, app: a, queue: q, sw: sw, overlay: overlay, last: time.Now()}
	ebiten.SetWindowTitle("Spacecraft (" + string(cfg.Variant) + ")")
	ebiten.SetWindowSize(settings.Width, settings.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.RenderFPS)

	err = ebiten.RunGame(g)
	if errors.Is(err, errViewerClosed) {
		return nil
	}
	return err
}

func (g *viewerGame) Update() error {
	if g.ctx.Err() != nil {
		return errViewerClosed
	}
	g.queue.Drain(g.app)

	now := time.Now()
	dt := now.Sub(g.last)
	g.last = now
	g.app.Handle(loop.Event{Producer: loop.ProducerRender, Kind: loop.KindTick, Dt: dt})
	return nil
}

func (g *viewerGame) Draw(screen *ebiten.Image) {
	frame, n := g.sw.Frame()
	if frame != nil {
		b := frame.Bounds()
		if g.rgba == nil || g.rgba.Bounds().Size() != b.Size() {
			g.rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
			if g.img != nil {
				g.img.Deallocate()
			}
			g.img = ebiten.NewImage(b.Dx(), b.Dy())
			g.seenN = 0
		}
		if n != g.seenN {
			draw.Draw(g.rgba, g.rgba.Bounds(), frame, b.Min, draw.Src)
			g.img.WritePixels(g.rgba.Pix)
			g.seenN = n
		}

		op := &ebiten.DrawImageOptions{}
		sb := screen.Bounds()
		op.GeoM.Scale(float64(sb.Dx())/float64(b.Dx()), float64(sb.Dy())/float64(b.Dy()))
		screen.DrawImage(g.img, op)
	}
	ebitenutil.DebugPrint(screen, g.overlay.text)
}

func (g *viewerGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.outW || outsideHeight != g.outH {
		g.outW, g.outH = outsideWidth, outsideHeight
		w, h := renderSize(outsideWidth, outsideHeight)
		// Layout runs on the game goroutine, same as Update.
		g.app.Handle(loop.Event{Producer: loop.ProducerHost, Kind: loop.KindResize, Width: w, Height: h})
	}
	return outsideWidth, outsideHeight
}
