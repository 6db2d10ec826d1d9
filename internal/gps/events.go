package gps

import "nmeastream/internal/nmea"

// EventData is the event every decoded sentence is published on. Each
// sentence is also published on its type tag (nmea.TypeGGA, ...).
const EventData = "data"

// Handler receives decoded sentences. Handlers run synchronously inside
// Update and Feed and must not call back into the Parser.
type Handler func(nmea.Sentence)

// HandlerID identifies a registration made with Parser.On.
type HandlerID uint64

type registration struct {
	id HandlerID
	fn Handler
}

type dispatcher struct {
	nextID   HandlerID
	handlers map[string][]registration
}

func (d *dispatcher) on(event string, fn Handler) HandlerID {
	if d.handlers == nil {
		d.handlers = make(map[string][]registration)
	}
	d.nextID++
	d.handlers[event] = append(d.handlers[event], registration{id: d.nextID, fn: fn})
	return d.nextID
}

func (d *dispatcher) off(event string, ids ...HandlerID) {
	if len(ids) == 0 {
		delete(d.handlers, event)
		return
	}
	regs := d.handlers[event]
	kept := make([]registration, 0, len(regs))
	for _, r := range regs {
		if !containsID(ids, r.id) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		delete(d.handlers, event)
		return
	}
	d.handlers[event] = kept
}

func containsID(ids []HandlerID, id HandlerID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (d *dispatcher) emit(event string, s nmea.Sentence) {
	for _, r := range d.handlers[event] {
		r.fn(s)
	}
}
