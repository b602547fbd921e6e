package crossslider

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// ValueWriter is implemented by touch sources that can report values back to their peer
type ValueWriter interface {
	WriteValue(v Value) error
}

// touchFanout hands touch events to every subscriber. Subscriber channels are
// closed once the source's input has ended for good. After halt, pending deliveries
// are dropped so a reader goroutine never blocks on a consumer that went away.
type touchFanout struct {
	touchConsumers []chan TouchEvent
	closeOnce      sync.Once

	done     chan struct{}
	haltOnce sync.Once
}

func newTouchFanout() *touchFanout {
	return &touchFanout{done: make(chan struct{})}
}

// SubscribeToTouchEvents returns an unbuffered channel that receives
// a TouchEvent struct for every well-formed touch line
func (f *touchFanout) SubscribeToTouchEvents() chan TouchEvent {
	ch := make(chan TouchEvent)
	f.touchConsumers = append(f.touchConsumers, ch)

	return ch
}

// deliver blocks until every consumer took every event, or until halt is called.
// It reports whether all events went out.
func (f *touchFanout) deliver(events []TouchEvent) bool {
	for _, consumer := range f.touchConsumers {
		for _, event := range events {
			select {
			case consumer <- event:
			case <-f.done:
				return false
			}
		}
	}

	return true
}

func (f *touchFanout) halt() {
	f.haltOnce.Do(func() {
		close(f.done)
	})
}

func (f *touchFanout) closeConsumers() {
	f.closeOnce.Do(func() {
		for _, consumer := range f.touchConsumers {
			close(consumer)
		}
	})
}

// StreamIO reads touch lines from any byte stream - stdin, a file, or an open serial port
type StreamIO struct {
	name    string
	logger  *zap.SugaredLogger
	verbose bool

	conn   io.ReadCloser
	writer io.Writer

	writeLock sync.Mutex
	stopOnce  sync.Once

	*touchFanout
}

// NewStreamIO creates a StreamIO reading from conn. If writer is non-nil,
// value changes are echoed to it.
func NewStreamIO(logger *zap.SugaredLogger, name string, conn io.ReadCloser, writer io.Writer, verbose bool) *StreamIO {
	return newStreamIO(logger, name, conn, writer, verbose, newTouchFanout())
}

func newStreamIO(
	logger *zap.SugaredLogger,
	name string,
	conn io.ReadCloser,
	writer io.Writer,
	verbose bool,
	fanout *touchFanout,
) *StreamIO {
	logger = logger.Named(name)

	stream := &StreamIO{
		name:        name,
		logger:      logger,
		verbose:     verbose,
		conn:        conn,
		writer:      writer,
		touchFanout: fanout,
	}

	logger.Debug("Created stream i/o instance")

	return stream
}

// Start begins reading lines in the background
func (s *StreamIO) Start() error {
	if s.conn == nil {
		return errors.New("stream: no input to read from")
	}

	s.logger.Debug("Starting to read touch lines")

	go func() {
		reader := bufio.NewReader(s.conn)

		for {
			line, err := reader.ReadString('\n')

			// a final line without a trailing newline still counts
			if line != "" {
				s.handleLine(line)
			}

			if err != nil {
				if errors.Is(err, io.EOF) {
					s.logger.Debug("Input ended")
				} else if s.verbose {
					s.logger.Warnw("Failed to read line", "error", err)
				}

				s.closeConsumers()
				return
			}
		}
	}()

	return nil
}

// Stop closes the underlying stream, which ends the read loop. An event the loop
// is still trying to hand over is dropped.
func (s *StreamIO) Stop() {
	s.halt()

	if s.conn == nil {
		return
	}

	s.stopOnce.Do(func() {
		if err := s.conn.Close(); err != nil {
			s.logger.Warnw("Failed to close stream", "error", err)
		} else {
			s.logger.Debug("Stream closed")
		}
	})
}

// WriteValue echoes a value line to the stream's writer, if it has one
func (s *StreamIO) WriteValue(v Value) error {
	if s.writer == nil {
		return nil
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if _, err := io.WriteString(s.writer, formatValueLine(v)); err != nil {
		return fmt.Errorf("write value line: %w", err)
	}

	return nil
}

func (s *StreamIO) handleLine(line string) {
	event, ok := parseTouchLine(line)
	if !ok {
		if s.verbose {
			s.logger.Debugw("Ignoring malformed touch line", "line", line)
		}

		return
	}

	if s.verbose {
		s.logger.Debugw("Touch", "event", event)
	}

	if !s.deliver([]TouchEvent{event}) {
		s.logger.Debugw("Dropped touch after stop", "event", event)
	}
}
