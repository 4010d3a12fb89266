// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlsrecord

import (
	"errors"
	"io"
	"net"
	"time"
)

// Transport is the byte stream the record layer reads wire records from and
// writes them to. Records may arrive split or coalesced arbitrarily.
type Transport interface {
	// Send writes data and returns the number of bytes the transport accepted.
	Send(data []byte) (int, error)

	// Receive returns up to maxLen bytes. A nil slice together with a nil
	// error means the peer closed the stream.
	Receive(maxLen int) ([]byte, error)

	// HasDataAvailable reports whether a Receive would return data without
	// blocking longer than timeout.
	HasDataAvailable(timeout time.Duration) bool

	// Close shuts the underlying stream down.
	Close() error
}

// connTransport adapts a net.Conn to the Transport interface.
type connTransport struct {
	conn net.Conn

	// peeked holds the byte consumed by HasDataAvailable until the next
	// Receive returns it.
	peeked []byte
}

// NewConnTransport wraps a net.Conn as a Transport.
func NewConnTransport(conn net.Conn) Transport {
	return &connTransport{conn: conn}
}

func (t *connTransport) Send(data []byte) (int, error) {
	return t.conn.Write(data)
}

func (t *connTransport) Receive(maxLen int) ([]byte, error) {
	if maxLen <= 0 {
		return nil, ErrInvalidParameter
	}

	buf := make([]byte, maxLen)
	if len(t.peeked) > 0 {
		n := copy(buf, t.peeked)
		t.peeked = nil

		return buf[:n], nil
	}

	n, err := t.conn.Read(buf)
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		err = nil
	}
	if n == 0 {
		return nil, err
	}

	return buf[:n], err
}

func (t *connTransport) HasDataAvailable(timeout time.Duration) bool {
	if len(t.peeked) > 0 {
		return true
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return false
	}
	defer func() { _ = t.conn.SetReadDeadline(time.Time{}) }()

	one := make([]byte, 1)
	n, _ := t.conn.Read(one)
	if n == 1 {
		t.peeked = one
	}

	return n == 1
}

func (t *connTransport) Close() error {
	return t.conn.Close()
}
