package gps

import (
	"github.com/benbjohnson/clock"
	"github.com/mohae/deepcopy"

	"nmeastream/internal/nmea"
)

// Parser decodes a stream of NMEA sentences into a running State and
// publishes every decoded sentence to registered handlers.
//
// A Parser is not safe for concurrent use. Independent Parsers share no
// state.
type Parser struct {
	decoder *nmea.Decoder
	agg     *aggregator
	state   State
	buf     lineBuffer
	events  dispatcher
}

type Option func(*parserOptions)

type parserOptions struct {
	clock clock.Clock
}

// WithClock sets the clock used to age satellites out of SatsVisible.
func WithClock(c clock.Clock) Option {
	return func(o *parserOptions) { o.clock = c }
}

func NewParser(opts ...Option) *Parser {
	o := parserOptions{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Parser{
		decoder: nmea.NewDecoder(),
		agg:     newAggregator(o.clock),
	}
}

// Update decodes one line (without terminator), folds it into the state
// and notifies handlers.
//
// It returns false with a nil error when line is not a sentence or has an
// unknown type, and false with a *nmea.DecodeError when a known sentence
// fails to decode. Both count as errors in State. A checksum mismatch is
// delivered normally with ChecksumValid() == false.
func (p *Parser) Update(line string) (bool, error) {
	p.state.Processed++
	s, err := p.decoder.Decode(line)
	if err != nil {
		p.state.Errors++
		if nmea.IsFrameError(err) {
			return false, nil
		}
		return false, err
	}

	p.agg.apply(&p.state, s)
	p.events.emit(EventData, s)
	p.events.emit(s.DataType(), s)
	return true, nil
}

// Feed appends chunk to the line buffer and runs Update on every complete
// line. It stops at the first decode error and returns it; the lines after
// the failing one stay buffered and are processed by the next Feed call.
func (p *Parser) Feed(chunk string) error {
	p.buf.write(chunk)
	for {
		line, ok := p.buf.next()
		if !ok {
			return nil
		}
		if _, err := p.Update(line); err != nil {
			return err
		}
	}
}

// Write implements io.Writer on top of Feed.
func (p *Parser) Write(b []byte) (int, error) {
	if err := p.Feed(string(b)); err != nil {
		return len(b), err
	}
	return len(b), nil
}

// On registers fn for event, which is EventData or a sentence type tag.
func (p *Parser) On(event string, fn Handler) HandlerID {
	return p.events.on(event, fn)
}

// Off removes the given registrations from event, or every registration
// for event when no ids are passed.
func (p *Parser) Off(event string, ids ...HandlerID) {
	p.events.off(event, ids...)
}

// State returns a deep copy of the current aggregate state.
func (p *Parser) State() State {
	return deepcopy.Copy(p.state).(State)
}
