package state

import (
	"errors"
	"image"
	"sync"
	"testing"
)

func TestNewStoreIdle(t *testing.T) {
	snap := NewStore().Snapshot()
	if snap.Phase != IDLE {
		t.Errorf("Phase = %v, want idle", snap.Phase)
	}
	if snap.StartedAt.IsZero() {
		t.Error("StartedAt not set")
	}
	if snap.Last.Image != nil {
		t.Error("fresh store has an image")
	}
}

func TestRecordRenderAndFailure(t *testing.T) {
	store := NewStore()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	store.RecordRender(KindStrokes, img, "")
	snap := store.Snapshot()
	if snap.Phase != RENDERED || snap.Counters.Strokes != 1 {
		t.Fatalf("after strokes: phase %v, counters %+v", snap.Phase, snap.Counters)
	}
	if snap.Last.Image != img || snap.Last.Kind != KindStrokes {
		t.Errorf("Last = %+v", snap.Last)
	}

	store.RecordFailure(KindName, errors.New("font missing"))
	snap = store.Snapshot()
	if snap.Phase != FAILED || snap.Counters.Failures != 1 {
		t.Fatalf("after failure: phase %v, counters %+v", snap.Phase, snap.Counters)
	}
	if snap.Last.Image != img {
		t.Error("failure dropped the last good image")
	}
	if snap.Last.Err != "font missing" || snap.Last.Kind != KindName {
		t.Errorf("Last = %+v", snap.Last)
	}

	store.RecordRender(KindName, img, "Jane Doe")
	snap = store.Snapshot()
	if snap.Counters.Names != 1 || snap.Last.Err != "" || snap.Last.Name != "Jane Doe" {
		t.Errorf("after name render: %+v", snap)
	}

	store.ClearLast()
	if snap := store.Snapshot(); snap.Phase != IDLE || snap.Last.Image != nil {
		t.Errorf("ClearLast left %+v", snap.Last)
	}
}

func TestSeqAdvances(t *testing.T) {
	store := NewStore()
	seq := store.Snapshot().Seq
	store.UpdateNetwork(NetworkInfo{IP: "10.0.0.2", URL: "http://10.0.0.2/"})
	next := store.Snapshot()
	if next.Seq <= seq {
		t.Errorf("Seq did not advance: %d -> %d", seq, next.Seq)
	}
	if next.Network.URL != "http://10.0.0.2/" {
		t.Errorf("Network = %+v", next.Network)
	}
}

func TestStoreConcurrent(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.RecordRender(KindStrokes, nil, "")
		}()
		go func() {
			defer wg.Done()
			_ = store.Snapshot()
		}()
	}
	wg.Wait()
	if got := store.Snapshot().Counters.Strokes; got != 50 {
		t.Errorf("Strokes = %d, want 50", got)
	}
}
