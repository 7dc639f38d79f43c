package network

import (
	"net"
	"sync"
	"time"
)

// UDPSocket is the subset of *net.UDPConn used by UDPListener, so listeners
// can be tested without real sockets.
type UDPSocket interface {
	ReadFromUDP(b []byte) (n int, addr *net.UDPAddr, err error)
	SetReadBuffer(bytes int) error
	SetReadDeadline(t time.Time) error
	Close() error
	LocalAddr() net.Addr
}

// UDPSocketFactory creates UDP sockets.
type UDPSocketFactory interface {
	ListenUDP(network string, laddr *net.UDPAddr) (UDPSocket, error)
}

// RealUDPSocketFactory implements UDPSocketFactory using net.ListenUDP.
type RealUDPSocketFactory struct{}

// ListenUDP creates a new UDP socket. *net.UDPConn satisfies UDPSocket.
func (RealUDPSocketFactory) ListenUDP(network string, laddr *net.UDPAddr) (UDPSocket, error) {
	conn, err := net.ListenUDP(network, laddr)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// MockUDPPacket is a datagram queued on a MockUDPSocket.
type MockUDPPacket struct {
	Data []byte
	Addr *net.UDPAddr
}

// MockUDPSocket implements UDPSocket for testing. Once the queued packets are
// consumed every read times out, as a real socket does with a deadline set.
type MockUDPSocket struct {
	mu sync.Mutex

	packets        []MockUDPPacket
	readIndex      int
	closed         bool
	readBufferSize int
	localAddr      *net.UDPAddr

	// ReadError is returned once by the next ReadFromUDP call if set.
	ReadError error
	// SetReadBufferError is returned by SetReadBuffer if set.
	SetReadBufferError error
}

// NewMockUDPSocket creates a socket that will deliver packets in order.
func NewMockUDPSocket(port int, packets ...MockUDPPacket) *MockUDPSocket {
	return &MockUDPSocket{
		packets:   packets,
		localAddr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port},
	}
}

// ReadFromUDP returns the next queued packet.
func (m *MockUDPSocket) ReadFromUDP(b []byte) (int, *net.UDPAddr, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, nil, net.ErrClosed
	}
	if err := m.ReadError; err != nil {
		m.ReadError = nil
		m.mu.Unlock()
		return 0, nil, err
	}
	if m.readIndex >= len(m.packets) {
		m.mu.Unlock()
		time.Sleep(time.Millisecond)
		return 0, nil, &net.OpError{Op: "read", Net: "udp", Err: timeoutError{}}
	}
	pkt := m.packets[m.readIndex]
	m.readIndex++
	m.mu.Unlock()

	return copy(b, pkt.Data), pkt.Addr, nil
}

// SetReadBuffer records the buffer size.
func (m *MockUDPSocket) SetReadBuffer(bytes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetReadBufferError != nil {
		return m.SetReadBufferError
	}
	m.readBufferSize = bytes
	return nil
}

// SetReadDeadline is a no-op.
func (m *MockUDPSocket) SetReadDeadline(time.Time) error { return nil }

// Close marks the socket as closed.
func (m *MockUDPSocket) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// LocalAddr returns the mock local address.
func (m *MockUDPSocket) LocalAddr() net.Addr { return m.localAddr }

// Closed reports whether Close was called.
func (m *MockUDPSocket) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// ReadBufferSize returns the value passed to SetReadBuffer.
func (m *MockUDPSocket) ReadBufferSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readBufferSize
}

// MockUDPSocketFactory hands out MockUDPSockets by bound port.
type MockUDPSocketFactory struct {
	mu      sync.Mutex
	sockets map[int]*MockUDPSocket
	calls   []*net.UDPAddr

	// Error is returned by ListenUDP if set.
	Error error
}

// NewMockUDPSocketFactory registers each socket under its local port.
func NewMockUDPSocketFactory(sockets ...*MockUDPSocket) *MockUDPSocketFactory {
	f := &MockUDPSocketFactory{sockets: make(map[int]*MockUDPSocket)}
	for _, s := range sockets {
		f.sockets[s.localAddr.Port] = s
	}
	return f
}

// ListenUDP returns the socket registered for laddr's port.
func (f *MockUDPSocketFactory) ListenUDP(_ string, laddr *net.UDPAddr) (UDPSocket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, laddr)
	if f.Error != nil {
		return nil, f.Error
	}
	s, ok := f.sockets[laddr.Port]
	if !ok {
		return nil, &net.OpError{Op: "listen", Net: "udp", Addr: laddr, Err: errAddrInUse{}}
	}
	return s, nil
}

// ListenCalls returns the addresses passed to ListenUDP.
func (f *MockUDPSocketFactory) ListenCalls() []*net.UDPAddr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*net.UDPAddr(nil), f.calls...)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type errAddrInUse struct{}

func (errAddrInUse) Error() string { return "address already in use" }
