package hand

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

type sentenceSource struct {
	reader  *bufio.Reader
	closer  io.Closer
	pending []Hand
	now     func() time.Time
}

// NewSentenceSource reads bridge sentences from r. Malformed lines and
// sentences of other types are skipped.
func NewSentenceSource(r io.Reader) (Source, error) {
	if err := registerSentences(); err != nil {
		return nil, err
	}
	src := &sentenceSource{reader: bufio.NewReader(r), now: time.Now}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}
	return src, nil
}

// OpenSerialSource opens the hand-tracker bridge on a serial port.
func OpenSerialSource(portName string, baudRate int) (Source, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open hand bridge %s: %w", portName, err)
	}
	log.Printf("hand: serial bridge opened on %s at %d baud", portName, baudRate)
	return NewSentenceSource(port)
}

// Next blocks on the underlying reader. Cancelling ctx closes the port
// when it is closable, which unblocks the pending read.
func (s *sentenceSource) Next(ctx context.Context) (Frame, error) {
	if s.closer != nil {
		stop := context.AfterFunc(ctx, func() { s.closer.Close() })
		defer stop()
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return Frame{}, ctx.Err()
			}
			return Frame{}, fmt.Errorf("hand bridge read: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// bridge noise or a partial line after reconnect
			continue
		}

		switch m := sentence.(type) {
		case HND:
			s.pending = append(s.pending, Hand{
				ID:      m.HandID,
				Reading: Reading{Roll: m.Roll, Pitch: m.Pitch, Yaw: m.Yaw},
			})
		case FRM:
			if int64(len(s.pending)) != m.Hands {
				log.Printf("hand: frame %d announced %d hands, got %d", m.Seq, m.Hands, len(s.pending))
			}
			f := Frame{Seq: m.Seq, Time: s.now(), Hands: s.pending}
			s.pending = nil
			return f, nil
		}
	}
}
