package crossslider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacobsa/go-serial/serial"
	"go.uber.org/zap"
)

// SerialIO reads touch lines from a serial device, such as a touch pad hooked up to
// a microcontroller, and writes value lines back to it
type SerialIO struct {
	comPort  string
	baudRate uint

	logger  *zap.SugaredLogger
	verbose bool

	connOptions serial.OpenOptions
	stream      *StreamIO

	*touchFanout
}

// NewSerialIO creates a SerialIO for the given port. Nothing is opened until Start.
func NewSerialIO(logger *zap.SugaredLogger, comPort string, baudRate uint, verbose bool) (*SerialIO, error) {
	logger = logger.Named("serial")

	if comPort == "" {
		return nil, errors.New("serial: no COM port given")
	}

	sio := &SerialIO{
		comPort:     comPort,
		baudRate:    baudRate,
		logger:      logger,
		verbose:     verbose,
		touchFanout: newTouchFanout(),
	}

	logger.Debug("Created serial i/o instance")

	return sio, nil
}

// Start opens the serial port and starts reading from it
func (sio *SerialIO) Start() error {

	// don't allow multiple concurrent connections
	if sio.stream != nil {
		sio.logger.Warn("Already connected, can't start another without closing first")
		return errors.New("serial: connection already active")
	}

	sio.connOptions = serial.OpenOptions{
		PortName:        sio.comPort,
		BaudRate:        sio.baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}

	sio.logger.Debugw("Attempting serial connection",
		"comPort", sio.connOptions.PortName,
		"baudRate", sio.connOptions.BaudRate)

	conn, err := serial.Open(sio.connOptions)
	if err != nil {

		// might need a user notification here, TBD
		sio.logger.Warnw("Failed to open serial connection", "error", err)
		return fmt.Errorf("open serial connection: %w", err)
	}

	sio.logger.Infow("Connected", "conn", conn)

	sio.stream = newStreamIO(sio.logger, strings.ToLower(sio.comPort), conn, conn, sio.verbose, sio.touchFanout)

	return sio.stream.Start()
}

// Stop shuts down the serial connection, if one is active
func (sio *SerialIO) Stop() {
	sio.halt()

	if sio.stream == nil {
		sio.logger.Debug("Not currently connected, nothing to stop")
		return
	}

	sio.logger.Debug("Shutting down serial connection")
	sio.stream.Stop()
}

// WriteValue sends a value line to the device
func (sio *SerialIO) WriteValue(v Value) error {
	if sio.stream == nil {
		return errors.New("serial: not connected")
	}

	return sio.stream.WriteValue(v)
}
