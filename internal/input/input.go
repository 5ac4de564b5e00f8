// Package input turns a raw terminal byte stream into per-frame key state.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a movement key is considered "held" after its last
// press. Terminals send no key-up events, only auto-repeat, so this has to bridge
// the repeat gap.
const keyHoldDuration = 120 * time.Millisecond

// escapeTimeout is how long an unfinished escape sequence waits for the rest
// of its bytes. A lone ESC becomes Pause once it runs out.
const escapeTimeout = 50 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	// Movement, true while the key is held
	Up    bool
	Down  bool
	Left  bool
	Right bool

	// Actions, true only in the frame the key arrived
	Start  bool // Space or Enter
	Pause  bool // P or a lone Escape
	Quit   bool // Q
	Closed bool // The byte stream ended (EOF or disconnect)

	Pressed []byte
}

// keyState tracks the last time each movement key was pressed.
type keyState struct {
	up    time.Time
	down  time.Time
	left  time.Time
	right time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool

	// Unfinished escape sequence carried into the next read
	pending      []byte
	pendingSince time.Time
}

func newStream() *Stream {
	return &Stream{ch: make(chan byte, 128)}
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := newStream()
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking).
func ReadInput(s *Stream) Input {
	return s.read(time.Now())
}

// Reset forgets held keys, so a key held across a phase change does not leak
// into the next phase.
func (s *Stream) Reset() {
	s.state = keyState{}
}

func (s *Stream) read(now time.Time) Input {
	var fresh []byte

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			fresh = append(fresh, b)
		default:
			break drain
		}
	}

	var in Input
	in.Closed = s.closed
	in.Pressed = fresh

	buf := append(s.pending, fresh...)
	s.pending = nil
	// Only a sequence carried over from earlier reads can time out.
	expired := !s.pendingSince.IsZero() && now.Sub(s.pendingSince) >= escapeTimeout

	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != '\x1b' {
			applyByte(&in, &s.state, b, now)
			continue
		}

		n, done := s.escape(&in, buf[i:], now)
		if !done {
			if s.closed || (expired && i == 0) {
				// Give up on the sequence; only a bare ESC still means Pause.
				in.Pause = in.Pause || len(buf)-i == 1
				break
			}
			if s.pendingSince.IsZero() || i > 0 {
				s.pendingSince = now
			}
			s.pending = append([]byte(nil), buf[i:]...)
			break
		}
		i += n - 1
	}
	if s.pending == nil {
		s.pendingSince = time.Time{}
	}

	in.Up = now.Sub(s.state.up) < keyHoldDuration
	in.Down = now.Sub(s.state.down) < keyHoldDuration
	in.Left = now.Sub(s.state.left) < keyHoldDuration
	in.Right = now.Sub(s.state.right) < keyHoldDuration

	return in
}

// escape handles the escape sequence at the start of seq, which begins with ESC.
// It returns how many bytes were consumed, or done=false if seq ends before the
// sequence does.
//
//	ESC [ params final   CSI; arrows are finals A-D, with or without modifiers
//	ESC O final          SS3; arrows in application cursor mode
//	ESC other            Pause, the other byte is handled on its own
func (s *Stream) escape(in *Input, seq []byte, now time.Time) (n int, done bool) {
	if len(seq) < 2 {
		return 0, false
	}

	switch seq[1] {
	case '[':
		for j := 2; j < len(seq); j++ {
			if seq[j] >= 0x40 && seq[j] <= 0x7e {
				s.arrow(seq[j], now)
				return j + 1, true
			}
		}
		return 0, false
	case 'O':
		if len(seq) < 3 {
			return 0, false
		}
		s.arrow(seq[2], now)
		return 3, true
	default:
		in.Pause = true
		return 1, true
	}
}

// arrow records a cursor key by its final byte. Other finals are ignored.
func (s *Stream) arrow(final byte, now time.Time) {
	switch final {
	case 'A':
		s.state.up = now
	case 'B':
		s.state.down = now
	case 'C':
		s.state.right = now
	case 'D':
		s.state.left = now
	}
}

// applyByte updates movement timestamps or sets one-shot actions for a single byte.
func applyByte(in *Input, state *keyState, b byte, now time.Time) {
	switch b {
	case 'w', 'W':
		state.up = now
	case 's', 'S':
		state.down = now
	case 'a', 'A':
		state.left = now
	case 'd', 'D':
		state.right = now
	case ' ', '\n', '\r':
		in.Start = true
	case 'p', 'P':
		in.Pause = true
	case 'q', 'Q', 0x03: // Ctrl+C arrives as a byte in raw mode
		in.Quit = true
	}
}
