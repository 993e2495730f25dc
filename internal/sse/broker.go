// Package sse pushes asset changes to open pages over Server-Sent Events.
package sse

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync/atomic"
	"time"
)

// AssetsChanged tells clients to re-fetch whatever asset they are showing.
const AssetsChanged = "assets.changed"

// Change kinds reported by the asset watcher.
const (
	Created = "created"
	Updated = "updated"
	Deleted = "deleted"
)

// Refresh is the payload of an assets.changed event.
type Refresh struct {
	Paths []string `json:"paths"`
}

type change struct {
	kind string
	path string
}

// Broker fans asset changes out to subscribed pages.
//
// Every change is forwarded as asset.<kind>. Refreshes are coalesced per
// window: the first change of a quiet period refreshes at once, and changes
// that arrive while the window is open are collected into a single trailing
// refresh when it closes. A copy that reports Create and then several Writes
// therefore always ends with a refresh after its last write.
type Broker struct {
	window time.Duration

	join     chan chan []byte
	leave    chan chan []byte
	changes  chan change
	countReq chan chan int

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker whose refresh window is refreshWindow.
func NewBroker(refreshWindow time.Duration) *Broker {
	if refreshWindow <= 0 {
		refreshWindow = 2 * time.Second
	}
	b := &Broker{
		window:   refreshWindow,
		join:     make(chan chan []byte),
		leave:    make(chan chan []byte),
		changes:  make(chan change, 256),
		countReq: make(chan chan int),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go b.loop()
	return b
}

// frame encodes one SSE message.
func frame(event string, data any) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	msg := make([]byte, 0, len(event)+len(payload)+16)
	msg = append(msg, "event: "...)
	msg = append(msg, event...)
	msg = append(msg, "\ndata: "...)
	msg = append(msg, payload...)
	return append(msg, "\n\n"...)
}

func (b *Broker) loop() {
	defer close(b.stopped)

	pages := make(map[chan []byte]struct{})
	send := func(msg []byte) {
		if msg == nil {
			return
		}
		for ch := range pages {
			select {
			case ch <- msg:
			default:
				// A slow page misses this message; the next refresh catches it up.
			}
		}
	}

	// windowC is non-nil while a refresh window is open.
	var timer *time.Timer
	var windowC <-chan time.Time
	pending := make(map[string]struct{})

	refresh := func(paths []string) {
		slices.Sort(paths)
		send(frame(AssetsChanged, Refresh{Paths: paths}))
		if timer == nil {
			timer = time.NewTimer(b.window)
		} else {
			timer.Reset(b.window)
		}
		windowC = timer.C
	}

	for {
		select {
		case <-b.stop:
			if timer != nil {
				timer.Stop()
			}
			for ch := range pages {
				close(ch)
			}
			return

		case ch := <-b.join:
			pages[ch] = struct{}{}

		case ch := <-b.leave:
			if _, ok := pages[ch]; ok {
				delete(pages, ch)
				close(ch)
			}

		case c := <-b.changes:
			send(frame("asset."+c.kind, map[string]string{"path": c.path}))
			if windowC == nil {
				refresh([]string{c.path})
			} else {
				pending[c.path] = struct{}{}
			}

		case <-windowC:
			if len(pending) == 0 {
				windowC = nil
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			// The trailing refresh opens the next window.
			refresh(paths)

		case resp := <-b.countReq:
			resp <- len(pages)
		}
	}
}

// Close stops the loop and ends every open stream.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// Subscribe registers a page and returns its message channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a page and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of subscribed pages.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReq <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishAssetEvent reports a change to the asset at path, relative to the
// asset root. Unknown kinds are ignored.
func (b *Broker) PublishAssetEvent(kind, path string) {
	switch kind {
	case Created, Updated, Deleted:
	default:
		return
	}
	if b.closed.Load() {
		return
	}
	select {
	case b.changes <- change{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one page (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	// Pages reconnect five seconds after the stream drops.
	_, _ = w.Write([]byte("retry: 5000\n\n"))
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
