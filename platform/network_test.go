package platform

import (
	"testing"
	"time"
)

func TestTCPSocketConnectSendRecvRoundTrip(t *testing.T) {
	n := NewNetwork()

	server := n.CreateTCPSocket()
	if res := server.Bind("127.0.0.1:0"); res != NetworkOK {
		t.Fatalf("Bind = %v, want NetworkOK", res)
	}
	defer server.Destroy()

	addr := server.listener.Addr().String()
	accepted := make(chan *TCPSocket, 1)
	go func() {
		conn, res := server.Accept()
		if res != NetworkOK {
			close(accepted)
			return
		}
		accepted <- conn
	}()

	client := n.CreateTCPSocket()
	if res := client.Connect(addr); res != NetworkOK {
		t.Fatalf("Connect = %v, want NetworkOK", res)
	}
	defer client.Destroy()

	peer, ok := <-accepted
	if !ok {
		t.Fatal("server failed to accept the client connection")
	}
	defer peer.Destroy()

	if _, res := client.Send([]byte("hello")); res != NetworkOK {
		t.Fatalf("Send = %v, want NetworkOK", res)
	}

	buf := make([]byte, 5)
	n2, res := peer.Recv(buf)
	if res != NetworkOK || string(buf[:n2]) != "hello" {
		t.Fatalf("Recv = (%d, %v), want (5, NetworkOK) with payload %q", n2, res, "hello")
	}
}

func TestSelectReportsReadableSocketBeforeTimeout(t *testing.T) {
	n := NewNetwork()

	server := n.CreateTCPSocket()
	if res := server.Bind("127.0.0.1:0"); res != NetworkOK {
		t.Fatalf("Bind = %v, want NetworkOK", res)
	}
	defer server.Destroy()

	addr := server.listener.Addr().String()
	accepted := make(chan *TCPSocket, 1)
	go func() {
		conn, _ := server.Accept()
		accepted <- conn
	}()

	client := n.CreateTCPSocket()
	if res := client.Connect(addr); res != NetworkOK {
		t.Fatalf("Connect = %v, want NetworkOK", res)
	}
	defer client.Destroy()

	peer := <-accepted
	defer peer.Destroy()

	idle := n.CreateTCPSocket()
	if res := idle.Connect(addr); res != NetworkOK {
		t.Fatalf("Connect = %v, want NetworkOK", res)
	}
	defer idle.Destroy()

	if _, res := client.Send([]byte("x")); res != NetworkOK {
		t.Fatalf("Send = %v, want NetworkOK", res)
	}

	readable, res := n.Select([]*TCPSocket{peer, idle}, time.Second)
	if res != NetworkOK {
		t.Fatalf("Select = %v, want NetworkOK", res)
	}
	if !readable[0] {
		t.Error("the socket with pending data should be readable")
	}
	if readable[1] {
		t.Error("the idle socket should not be readable")
	}
}

func TestSelectTimesOutWhenNothingReadable(t *testing.T) {
	n := NewNetwork()

	server := n.CreateTCPSocket()
	if res := server.Bind("127.0.0.1:0"); res != NetworkOK {
		t.Fatalf("Bind = %v, want NetworkOK", res)
	}
	defer server.Destroy()

	addr := server.listener.Addr().String()
	accepted := make(chan *TCPSocket, 1)
	go func() {
		conn, _ := server.Accept()
		accepted <- conn
	}()

	client := n.CreateTCPSocket()
	if res := client.Connect(addr); res != NetworkOK {
		t.Fatalf("Connect = %v, want NetworkOK", res)
	}
	defer client.Destroy()

	peer := <-accepted
	defer peer.Destroy()

	readable, res := n.Select([]*TCPSocket{peer}, 50*time.Millisecond)
	if res != NetworkFail {
		t.Fatalf("Select = %v, want NetworkFail on timeout", res)
	}
	if readable[0] {
		t.Error("a socket with no pending data must not be reported readable")
	}
}
