// Package jukebox keeps at most one audio element of a page playing.
//
// Mount moves each slot's companion audio element into the slot, then
// tracks every audio element of the document. Starting one track pauses
// all the others before Play returns.
package jukebox

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/alnah/go-enhance/internal/dom"
)

// CompanionSuffix derives the id of a slot's audio element from the slot name.
const CompanionSuffix = "-sound"

// DefaultSlots are the audio slots of an article page.
var DefaultSlots = []string{"intro", "outro"}

// Track is one audio element of the page.
type Track struct {
	box     *Jukebox
	id      string
	src     string
	playing bool
	onPlay  func(*Track)
}

// ID returns the element id, empty when it has none.
func (t *Track) ID() string { return t.id }

// Source returns the src attribute of the element.
func (t *Track) Source() string { return t.src }

// Playing reports whether the track is playing.
func (t *Track) Playing() bool {
	t.box.mu.Lock()
	defer t.box.mu.Unlock()
	return t.playing
}

// Play starts the track. Playing an already playing track does nothing;
// otherwise the play handler runs before Play returns.
func (t *Track) Play() {
	t.box.mu.Lock()
	if t.playing {
		t.box.mu.Unlock()
		return
	}
	t.playing = true
	handler := t.onPlay
	t.box.mu.Unlock()

	t.box.log.Debug("play", zap.String("track", t.label()))
	if handler != nil {
		handler(t)
	}
}

// Pause stops the track.
func (t *Track) Pause() {
	t.box.mu.Lock()
	t.playing = false
	t.box.mu.Unlock()
}

func (t *Track) label() string {
	if t.id != "" {
		return t.id
	}
	return t.src
}

// Jukebox holds the tracks of one page.
type Jukebox struct {
	mu     sync.Mutex
	tracks []*Track
	log    *zap.Logger
}

// Mount relocates slot audio and starts tracking every audio element of doc.
// A slot whose placeholder or companion is missing is left alone.
func Mount(doc *goquery.Document, slots []string, log *zap.Logger) *Jukebox {
	if log == nil {
		log = zap.NewNop()
	}
	j := &Jukebox{log: log.Named("jukebox")}

	root := doc.Nodes[0]
	for _, slot := range slots {
		placeholder := dom.ElementByID(root, slot)
		audio := dom.ElementByID(root, slot+CompanionSuffix)
		if placeholder == nil || audio == nil {
			continue
		}
		dom.Replace(placeholder, audio)
		j.log.Debug("slot filled", zap.String("slot", slot))
	}

	doc.Find("audio").Each(func(_ int, s *goquery.Selection) {
		n := s.Nodes[0]
		src, _ := dom.Attr(n, "src")
		if src == "" {
			src, _ = s.Find("source[src]").First().Attr("src")
		}
		j.tracks = append(j.tracks, &Track{box: j, id: dom.ID(n), src: src})
	})
	j.attach()
	return j
}

// attach assigns the play handler of every track. Assigning rather than
// adding keeps a second attach from doubling the observers.
func (j *Jukebox) attach() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, t := range j.tracks {
		t.onPlay = j.pauseOthers
	}
}

func (j *Jukebox) pauseOthers(current *Track) {
	j.mu.Lock()
	others := make([]*Track, 0, len(j.tracks))
	for _, t := range j.tracks {
		if t != current {
			others = append(others, t)
		}
	}
	j.mu.Unlock()

	for _, t := range others {
		t.Pause()
	}
}

// Tracks returns the tracked audio elements in document order.
func (j *Jukebox) Tracks() []*Track {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*Track, len(j.tracks))
	copy(out, j.tracks)
	return out
}

// Track returns the track with the given element id.
func (j *Jukebox) Track(id string) (*Track, bool) {
	for _, t := range j.Tracks() {
		if t.id == id {
			return t, true
		}
	}
	return nil, false
}

// Playing returns the playing track, if any.
func (j *Jukebox) Playing() (*Track, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, t := range j.tracks {
		if t.playing {
			return t, true
		}
	}
	return nil, false
}
