// Package sundial drives the hands of the analog clock drawn on a page.
//
// The scene is an SVG holding a face image and two line elements for the
// hour and minute hands. The hands are rotated through their inline
// transform, immediately, then at every top of the minute.
package sundial

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/alnah/go-enhance/internal/dom"
)

// DefaultScene selects the clock SVG of an article page.
const DefaultScene = "svg#gravatar"

// Hand names, matched against the id or name attribute of a line.
const (
	HourHand   = "hour"
	MinuteHand = "minute"
)

// ErrIncompleteScene indicates the scene lacks the face or a hand.
var ErrIncompleteScene = errors.New("clock scene incomplete")

// Hands holds hand rotations in degrees.
type Hands struct {
	Hour   float64
	Minute float64
}

// Angles returns the hand rotations for the wall-clock time of t.
// The hour hand makes one turn per day.
func Angles(t time.Time) Hands {
	h, m := float64(t.Hour()), float64(t.Minute())
	return Hands{
		Hour:   h*360/24 + m*360/(24*60),
		Minute: m * 360 / 60,
	}
}

// Config wires a Sundial.
type Config struct {
	Clock clockwork.Clock
	// Location the hours are read in. Nil means local time.
	Location *time.Location
	Log      *zap.Logger
	// Lock guards the document. Nil uses a private mutex.
	Lock sync.Locker
}

// Sundial owns the hands of one scene.
type Sundial struct {
	hour   *html.Node
	minute *html.Node
	offset float64

	clock clockwork.Clock
	loc   *time.Location
	log   *zap.Logger
	lock  sync.Locker

	mu   sync.Mutex
	last Hands

	// adjusted is called after every adjustment made by Run.
	adjusted func(time.Time)
}

// New locates the scene in doc and measures the hand pivot offset.
func New(doc *goquery.Document, scene string, cfg Config) (*Sundial, error) {
	svg := doc.Find(scene).First()
	if svg.Length() == 0 {
		return nil, fmt.Errorf("%w: no element matches %q", ErrIncompleteScene, scene)
	}

	face := svg.Find("image").First()
	if face.Length() == 0 {
		return nil, fmt.Errorf("%w: no face image", ErrIncompleteScene)
	}
	hour := namedLine(svg, HourHand)
	minute := namedLine(svg, MinuteHand)
	if hour == nil || minute == nil {
		return nil, fmt.Errorf("%w: missing hand", ErrIncompleteScene)
	}

	offset, err := pivotOffset(face.Nodes[0], minute)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompleteScene, err)
	}

	s := &Sundial{
		hour:   hour,
		minute: minute,
		offset: offset,
		clock:  cfg.Clock,
		loc:    cfg.Location,
		log:    cfg.Log,
		lock:   cfg.Lock,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.Named("sundial")
	if s.lock == nil {
		s.lock = &sync.Mutex{}
	}
	return s, nil
}

// namedLine finds the first line whose id or name is name.
func namedLine(svg *goquery.Selection, name string) *html.Node {
	for _, n := range svg.Find("line").Nodes {
		if dom.ID(n) == name {
			return n
		}
		if v, _ := dom.Attr(n, "name"); v == name {
			return n
		}
	}
	return nil
}

// pivotOffset moves the pivot from the line origin to the face center:
// half the face height less the minute hand length.
func pivotOffset(face, minute *html.Node) (float64, error) {
	height, ok := dom.Attr(face, "height")
	if !ok {
		return 0, errors.New("face has no height")
	}
	faceHeight, err := dom.LengthPx(height)
	if err != nil {
		return 0, fmt.Errorf("face height: %w", err)
	}
	y1, err := coordinate(minute, "y1")
	if err != nil {
		return 0, err
	}
	y2, err := coordinate(minute, "y2")
	if err != nil {
		return 0, err
	}
	return faceHeight/2 - math.Abs(y1-y2), nil
}

// coordinate reads a line coordinate in px. Absent coordinates are zero.
func coordinate(n *html.Node, attr string) (float64, error) {
	v, ok := dom.Attr(n, attr)
	if !ok {
		return 0, nil
	}
	px, err := dom.LengthPx(v)
	if err != nil {
		return 0, fmt.Errorf("minute hand %s: %w", attr, err)
	}
	return px, nil
}

// Offset returns the pivot translation in px.
func (s *Sundial) Offset() float64 { return s.offset }

// Hands returns the rotations of the last adjustment.
func (s *Sundial) Hands() Hands {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Adjust rotates both hands to the time of now.
func (s *Sundial) Adjust(now time.Time) {
	hands := Angles(now.In(s.loc))

	s.lock.Lock()
	dom.SetStyleProperty(s.hour, "transform", s.transform(hands.Hour))
	dom.SetStyleProperty(s.minute, "transform", s.transform(hands.Minute))
	s.lock.Unlock()

	s.mu.Lock()
	s.last = hands
	s.mu.Unlock()
}

func (s *Sundial) transform(deg float64) string {
	return "rotate(" + formatNumber(deg) + "deg) translateY(-" + formatNumber(s.offset) + "px)"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Run adjusts the hands now, at the next top of the minute, then every
// minute until ctx is done.
func (s *Sundial) Run(ctx context.Context) {
	now := s.clock.Now()
	s.adjust(now)

	next := now.Truncate(time.Minute).Add(time.Minute)
	timer := s.clock.NewTimer(next.Sub(now))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.Chan():
	}

	ticker := s.clock.NewTicker(time.Minute)
	defer ticker.Stop()
	s.adjust(s.clock.Now())

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("stopped")
			return
		case <-ticker.Chan():
			s.adjust(s.clock.Now())
		}
	}
}

func (s *Sundial) adjust(now time.Time) {
	s.Adjust(now)
	s.log.Debug("hands adjusted", zap.Time("at", now))
	if s.adjusted != nil {
		s.adjusted(now)
	}
}
