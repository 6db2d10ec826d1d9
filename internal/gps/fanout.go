package gps

import (
	"sync"

	"nmeastream/internal/nmea"
)

// fanout delivers decoded sentences to any number of channel subscribers.
// Slow subscribers lose sentences instead of blocking the reader.
type fanout struct {
	mu     sync.RWMutex
	subs   map[int]chan nmea.Sentence
	nextID int
}

func newFanout() *fanout {
	return &fanout{subs: make(map[int]chan nmea.Sentence)}
}

func (f *fanout) subscribe(buffer int) (int, <-chan nmea.Sentence) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan nmea.Sentence, buffer)
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()
	return id, ch
}

func (f *fanout) unsubscribe(id int) {
	f.mu.Lock()
	ch, ok := f.subs[id]
	if ok {
		delete(f.subs, id)
		close(ch)
	}
	f.mu.Unlock()
}

func (f *fanout) publish(s nmea.Sentence) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ch := range f.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// closeAll closes every subscriber channel.
func (f *fanout) closeAll() {
	f.mu.Lock()
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
	f.mu.Unlock()
}
