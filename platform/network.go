package platform

import (
	"bufio"
	"io"
	"net"
	"strconv"
	"sync"
	"time"
)

// NetworkResult is the two-valued success/fail result of spec.md §6.4
// for the network capability.
type NetworkResult int

const (
	NetworkOK NetworkResult = iota
	NetworkFail
)

// ReceiverInfo carries the sender address for UDP recvfrom, per
// spec.md §6.2.
type ReceiverInfo struct {
	Address string
	Port    int
}

// Network is the network capability vtable of spec.md §6.2. It wraps
// net.Conn/net.Listener/net.PacketConn rather than raw syscalls,
// since select's timeout-bearing behavior is the only blocking
// primitive the core is allowed to pass straight through to the OS
// (spec.md §5), and Go's net package already exposes that via
// SetDeadline.
type Network struct{}

func NewNetwork() *Network { return &Network{} }

// TCPSocket wraps a net.Conn/net.Listener pair through the
// create/bind/connect/listen/accept/send/recv lifecycle of spec.md
// §6.2.
type TCPSocket struct {
	conn     net.Conn
	listener net.Listener

	// reader buffers conn so Select can Peek for readability without
	// discarding bytes a subsequent Recv needs to see.
	reader *bufio.Reader
}

func (n *Network) CreateTCPSocket() *TCPSocket { return &TCPSocket{} }

func (s *TCPSocket) Connect(address string) NetworkResult {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return NetworkFail
	}
	s.conn = conn
	s.reader = bufio.NewReader(conn)
	return NetworkOK
}

func (s *TCPSocket) Bind(address string) NetworkResult {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return NetworkFail
	}
	s.listener = l
	return NetworkOK
}

// Listen is a no-op on top of net.Listen, which already listens once
// bound; present for interface symmetry with the C socket lifecycle.
func (s *TCPSocket) Listen() NetworkResult {
	if s.listener == nil {
		return NetworkFail
	}
	return NetworkOK
}

func (s *TCPSocket) Accept() (*TCPSocket, NetworkResult) {
	if s.listener == nil {
		return nil, NetworkFail
	}
	conn, err := s.listener.Accept()
	if err != nil {
		return nil, NetworkFail
	}
	return &TCPSocket{conn: conn, reader: bufio.NewReader(conn)}, NetworkOK
}

func (s *TCPSocket) Send(data []byte) (int, NetworkResult) {
	if s.conn == nil {
		return 0, NetworkFail
	}
	n, err := s.conn.Write(data)
	if err != nil {
		return n, NetworkFail
	}
	return n, NetworkOK
}

func (s *TCPSocket) Recv(buf []byte) (int, NetworkResult) {
	if s.conn == nil {
		return 0, NetworkFail
	}
	n, err := s.reader.Read(buf)
	if err != nil {
		return n, NetworkFail
	}
	return n, NetworkOK
}

func (s *TCPSocket) Destroy() NetworkResult {
	var err error
	if s.conn != nil {
		err = s.conn.Close()
	}
	if s.listener != nil {
		if lerr := s.listener.Close(); lerr != nil {
			err = lerr
		}
	}
	if err != nil {
		return NetworkFail
	}
	return NetworkOK
}

// Select waits up to timeout for any of sockets to become readable,
// mirroring pl_network_ext.h's select_sockets(sockets, selectedSockets,
// socketCount, timeOutMilliSec) — the socket select spec.md §5 singles
// out as the only timeout-bearing call passed straight through to the
// OS. The returned slice is parallel to sockets; readable[i] reports
// whether sockets[i] had data available (or hit EOF) before timeout
// elapsed. Entries for a nil socket or one with no open connection are
// always false.
func (n *Network) Select(sockets []*TCPSocket, timeout time.Duration) ([]bool, NetworkResult) {
	readable := make([]bool, len(sockets))
	if len(sockets) == 0 {
		return readable, NetworkOK
	}

	deadline := time.Now().Add(timeout)
	var wg sync.WaitGroup
	for i, s := range sockets {
		if s == nil || s.conn == nil {
			continue
		}
		wg.Add(1)
		go func(i int, s *TCPSocket) {
			defer wg.Done()
			s.conn.SetReadDeadline(deadline)
			if _, err := s.reader.Peek(1); err == nil || err == io.EOF {
				readable[i] = true
			}
			s.conn.SetReadDeadline(time.Time{})
		}(i, s)
	}
	wg.Wait()

	for _, r := range readable {
		if r {
			return readable, NetworkOK
		}
	}
	return readable, NetworkFail
}

// UDPSocket wraps net.PacketConn for sendto/recvfrom, per spec.md
// §6.2.
type UDPSocket struct {
	conn net.PacketConn
}

func (n *Network) CreateUDPSocket(bindAddress string) (*UDPSocket, NetworkResult) {
	conn, err := net.ListenPacket("udp", bindAddress)
	if err != nil {
		return nil, NetworkFail
	}
	return &UDPSocket{conn: conn}, NetworkOK
}

func (s *UDPSocket) SendTo(data []byte, address string) (int, NetworkResult) {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return 0, NetworkFail
	}
	n, err := s.conn.WriteTo(data, addr)
	if err != nil {
		return n, NetworkFail
	}
	return n, NetworkOK
}

func (s *UDPSocket) RecvFrom(buf []byte) (int, ReceiverInfo, NetworkResult) {
	n, addr, err := s.conn.ReadFrom(buf)
	if err != nil {
		return n, ReceiverInfo{}, NetworkFail
	}
	host, portStr, splitErr := net.SplitHostPort(addr.String())
	if splitErr != nil {
		return n, ReceiverInfo{Address: addr.String()}, NetworkOK
	}
	port, _ := strconv.Atoi(portStr)
	return n, ReceiverInfo{Address: host, Port: port}, NetworkOK
}

func (s *UDPSocket) Destroy() NetworkResult {
	if err := s.conn.Close(); err != nil {
		return NetworkFail
	}
	return NetworkOK
}
