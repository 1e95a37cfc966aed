package state

import (
	"image"
	"sync"
	"time"
)

type Phase int

const (
	IDLE Phase = iota
	RENDERED
	FAILED
)

func (p Phase) String() string {
	switch p {
	case IDLE:
		return "idle"
	case RENDERED:
		return "rendered"
	case FAILED:
		return "failed"
	}
	return "unknown"
}

type RenderKind string

const (
	KindStrokes RenderKind = "strokes"
	KindName    RenderKind = "name"
)

type NetworkInfo struct {
	IP  string
	URL string // public capture page, encoded in the idle QR code
}

// LastRender describes the most recent render attempt. Image is shared with
// readers and must not be modified once recorded.
type LastRender struct {
	Kind  RenderKind
	At    time.Time
	Name  string
	Image *image.RGBA
	Err   string
}

type Counters struct {
	Strokes  uint64
	Names    uint64
	Failures uint64
}

type State struct {
	Phase     Phase
	StartedAt time.Time
	Network   NetworkInfo
	Last      LastRender
	Counters  Counters

	// Seq increases with every change so pollers can skip redraws.
	Seq uint64
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: IDLE, StartedAt: time.Now()}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) UpdateNetwork(network NetworkInfo) {
	store.mu.Lock()
	store.state.Network = network
	store.state.Seq++
	store.mu.Unlock()
}

// RecordRender stores a successful render. name is only set for text
// renders.
func (store *Store) RecordRender(kind RenderKind, img *image.RGBA, name string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	switch kind {
	case KindStrokes:
		store.state.Counters.Strokes++
	case KindName:
		store.state.Counters.Names++
	}
	store.state.Phase = RENDERED
	store.state.Last = LastRender{Kind: kind, At: time.Now(), Name: name, Image: img}
	store.state.Seq++
}

// RecordFailure counts a failed render. The last successful image stays on
// display.
func (store *Store) RecordFailure(kind RenderKind, err error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.state.Counters.Failures++
	store.state.Phase = FAILED
	last := store.state.Last
	last.Kind = kind
	last.At = time.Now()
	if err != nil {
		last.Err = err.Error()
	}
	store.state.Last = last
	store.state.Seq++
}

// ClearLast drops the last image and returns the store to idle.
func (store *Store) ClearLast() {
	store.mu.Lock()
	store.state.Phase = IDLE
	store.state.Last = LastRender{}
	store.state.Seq++
	store.mu.Unlock()
}
