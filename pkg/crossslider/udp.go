package crossslider

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

const udpPacketSize = 4096

// UdpIO listens for touch lines over UDP and answers the most recent sender with value lines
type UdpIO struct {
	port    int
	logger  *zap.SugaredLogger
	verbose bool

	connection *net.UDPConn

	peerLock sync.Mutex
	lastPeer *net.UDPAddr

	*touchFanout
}

// NewUdpIO creates a UdpIO for the given port. Nothing is bound until Start.
func NewUdpIO(logger *zap.SugaredLogger, port int, verbose bool) (*UdpIO, error) {
	logger = logger.Named("udp")

	udpio := &UdpIO{
		port:        port,
		logger:      logger,
		verbose:     verbose,
		touchFanout: newTouchFanout(),
	}

	logger.Debug("Created UDP i/o instance")

	return udpio, nil
}

// Start creates a UDP listener server
func (udpio *UdpIO) Start() error {
	s, err := net.ResolveUDPAddr("udp4", fmt.Sprintf(":%d", udpio.port))
	if err != nil {
		udpio.logger.Warnw("Failed to resolve UDP address", "error", err)
		return fmt.Errorf("resolve udp address: %w", err)
	}

	connection, err := net.ListenUDP("udp4", s)
	if err != nil {
		udpio.logger.Warnw("Failed to start UDP listener", "error", err)
		return fmt.Errorf("start udp listener: %w", err)
	}

	udpio.connection = connection

	namedLogger := udpio.logger.Named(fmt.Sprintf(":%d", udpio.port))
	namedLogger.Infow("Listening", "addr", connection.LocalAddr())

	go udpio.readPackets(namedLogger)

	return nil
}

func (udpio *UdpIO) readPackets(logger *zap.SugaredLogger) {
	packet := make([]byte, udpPacketSize)

	for {
		bytesRead, peer, err := udpio.connection.ReadFromUDP(packet)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) && udpio.verbose {
				logger.Warnw("Failed to read UDP packet", "error", err)
			}

			udpio.closeConsumers()
			return
		}

		udpio.handlePacket(logger, peer, string(packet[:bytesRead]))
	}
}

func (udpio *UdpIO) handlePacket(logger *zap.SugaredLogger, peer *net.UDPAddr, packet string) {
	events := parseTouchPacket(packet)
	if len(events) == 0 {
		if udpio.verbose {
			logger.Debugw("Got malformed packet, ignoring", "packet", packet, "peer", peer)
		}

		return
	}

	udpio.peerLock.Lock()
	udpio.lastPeer = peer
	udpio.peerLock.Unlock()

	if udpio.verbose {
		logger.Debugw("Read touch packet", "events", len(events), "peer", peer)
	}

	if !udpio.deliver(events) {
		logger.Debugw("Dropped touch packet after stop", "peer", peer)
	}
}

// Stop closes the listener, if one is active
func (udpio *UdpIO) Stop() {
	udpio.halt()

	if udpio.connection == nil {
		udpio.logger.Debug("Not currently listening, nothing to stop")
		return
	}

	if err := udpio.connection.Close(); err != nil {
		udpio.logger.Warnw("Failed to close UDP connection", "error", err)
	} else {
		udpio.logger.Debug("UDP connection closed")
	}
}

// WriteValue sends a value line to whoever sent the last touch packet
func (udpio *UdpIO) WriteValue(v Value) error {
	udpio.peerLock.Lock()
	peer := udpio.lastPeer
	udpio.peerLock.Unlock()

	if peer == nil || udpio.connection == nil {
		return nil
	}

	if _, err := udpio.connection.WriteToUDP([]byte(formatValueLine(v)), peer); err != nil {
		return fmt.Errorf("write value packet: %w", err)
	}

	return nil
}
