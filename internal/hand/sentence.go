package hand

import (
	"fmt"
	"sync"

	nmea "github.com/adrianmo/go-nmea"
)

// The serial hand-tracker bridge frames its output as NMEA-style sentences
// with the "LP" talker id:
//
//	$LPHND,<seq>,<hand id>,<roll>,<pitch>,<yaw>*CS   one per tracked hand
//	$LPFRM,<seq>,<hand count>*CS                     closes the frame
const (
	TalkerBridge = "LP"
	TypeHND      = "HND"
	TypeFRM      = "FRM"
)

// HND carries one hand of a frame.
type HND struct {
	nmea.BaseSentence
	Seq    int64
	HandID string
	Roll   float64
	Pitch  float64
	Yaw    float64
}

// FRM marks the end of a frame.
type FRM struct {
	nmea.BaseSentence
	Seq   int64
	Hands int64
}

var registerOnce sync.Once
var registerErr error

// registerSentences adds the bridge sentence types to go-nmea's parser table.
func registerSentences() error {
	registerOnce.Do(func() {
		if err := nmea.RegisterParser(TypeHND, parseHND); err != nil {
			registerErr = fmt.Errorf("register %s parser: %w", TypeHND, err)
			return
		}
		if err := nmea.RegisterParser(TypeFRM, parseFRM); err != nil {
			registerErr = fmt.Errorf("register %s parser: %w", TypeFRM, err)
		}
	})
	return registerErr
}

func parseHND(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeHND)
	m := HND{
		BaseSentence: s,
		Seq:          p.Int64(0, "seq"),
		HandID:       p.String(1, "hand id"),
		Roll:         p.Float64(2, "roll"),
		Pitch:        p.Float64(3, "pitch"),
		Yaw:          p.Float64(4, "yaw"),
	}
	return m, p.Err()
}

func parseFRM(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeFRM)
	m := FRM{
		BaseSentence: s,
		Seq:          p.Int64(0, "seq"),
		Hands:        p.Int64(1, "hand count"),
	}
	return m, p.Err()
}

// EncodeFrame renders f as bridge sentences, one per line.
func EncodeFrame(f Frame) []string {
	out := make([]string, 0, len(f.Hands)+1)
	for _, h := range f.Hands {
		out = append(out, withChecksum(fmt.Sprintf("%s%s,%d,%s,%.6f,%.6f,%.6f",
			TalkerBridge, TypeHND, f.Seq, h.ID, h.Reading.Roll, h.Reading.Pitch, h.Reading.Yaw)))
	}
	out = append(out, withChecksum(fmt.Sprintf("%s%s,%d,%d", TalkerBridge, TypeFRM, f.Seq, len(f.Hands))))
	return out
}

func withChecksum(body string) string {
	return "$" + body + "*" + nmea.Checksum(body)
}
