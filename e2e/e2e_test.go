// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package e2e contains end to end tests driving two record layers against
// each other over a real TCP connection.
package e2e

import (
	"bytes"
	"net"
	"testing"

	"github.com/pion/tlsrecord"
	"github.com/pion/tlsrecord/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
)

type endpoint struct {
	layer *tlsrecord.RecordLayer
}

func connect(t *testing.T, version uint16) (*endpoint, *endpoint) {
	t.Helper()

	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, aerr := listener.Accept()
		if aerr == nil {
			accepted <- conn
		}
	}()

	clientConn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	serverConn := <-accepted

	client, err := tlsrecord.NewRecordLayer(version, tlsrecord.NewConnTransport(clientConn), nil)
	require.NoError(t, err)
	server, err := tlsrecord.NewRecordLayer(version, tlsrecord.NewConnTransport(serverConn), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})

	return &endpoint{layer: client}, &endpoint{layer: server}
}

func statePair(suite string, keyLen, ivLen, macLen int, version protocol.Version) (*tlsrecord.CipherState, *tlsrecord.CipherState) {
	key := bytes.Repeat([]byte{0x42}, keyLen)
	iv := bytes.Repeat([]byte{0x24}, ivLen)
	var macKey []byte
	if macLen > 0 {
		macKey = bytes.Repeat([]byte{0x18}, macLen)
	}

	return tlsrecord.NewCipherState(suite, key, iv, macKey, version),
		tlsrecord.NewCipherState(suite, key, iv, macKey, version)
}

func exchange(t *testing.T, from, to *endpoint, contentType protocol.ContentType, payload []byte) {
	t.Helper()

	require.NoError(t, from.layer.SendRecord(contentType, payload))

	var got []byte
	for len(got) < len(payload) {
		gotType, data, err := to.layer.ReceiveRecord()
		require.NoError(t, err)
		assert.Equal(t, contentType, gotType)
		got = append(got, data...)
	}
	assert.Equal(t, payload, got)
}

func TestE2EPlaintextHandshakeFlow(t *testing.T) {
	for _, version := range []uint16{0x0301, 0x0302, 0x0303, 0x0304} {
		client, server := connect(t, version)

		exchange(t, client, server, protocol.ContentTypeHandshake, []byte("client hello"))
		exchange(t, server, client, protocol.ContentTypeHandshake, []byte("server hello"))
	}
}

func TestE2EEncryptedBidirectional(t *testing.T) {
	for _, test := range []struct {
		Version uint16
		Proto   protocol.Version
		Suite   string
		KeyLen  int
		IVLen   int
		MACLen  int
	}{
		{Version: 0x0303, Proto: protocol.Version1_2, Suite: "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256", KeyLen: 16, IVLen: 12},
		{Version: 0x0303, Proto: protocol.Version1_2, Suite: "TLS_RSA_WITH_AES_128_CBC_SHA", KeyLen: 16, IVLen: 16, MACLen: 20},
		{Version: 0x0304, Proto: protocol.Version1_3, Suite: "TLS_AES_128_GCM_SHA256", KeyLen: 16, IVLen: 12},
		{Version: 0x0304, Proto: protocol.Version1_3, Suite: "TLS_CHACHA20_POLY1305_SHA256", KeyLen: 32, IVLen: 12},
	} {
		client, server := connect(t, test.Version)

		clientWrite, serverRead := statePair(test.Suite, test.KeyLen, test.IVLen, test.MACLen, test.Proto)
		serverWrite, clientRead := statePair(test.Suite, test.KeyLen, test.IVLen, test.MACLen, test.Proto)
		require.NoError(t, client.layer.ChangeWriteCipherSpec(clientWrite), test.Suite)
		require.NoError(t, server.layer.ChangeReadCipherSpec(serverRead), test.Suite)
		require.NoError(t, server.layer.ChangeWriteCipherSpec(serverWrite), test.Suite)
		require.NoError(t, client.layer.ChangeReadCipherSpec(clientRead), test.Suite)

		exchange(t, client, server, protocol.ContentTypeApplicationData, []byte("request"))
		exchange(t, server, client, protocol.ContentTypeApplicationData, []byte("response"))
		exchange(t, client, server, protocol.ContentTypeApplicationData, bytes.Repeat([]byte{0x7e}, 40000))
	}
}

func TestE2ECipherSpecSwitchover(t *testing.T) {
	client, server := connect(t, 0x0303)

	exchange(t, client, server, protocol.ContentTypeHandshake, []byte("hello"))
	exchange(t, client, server, protocol.ContentTypeChangeCipherSpec, []byte{0x01})

	write, read := statePair("TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256", 16, 12, 0, protocol.Version1_2)
	require.NoError(t, client.layer.ChangeWriteCipherSpec(write))
	require.NoError(t, server.layer.ChangeReadCipherSpec(read))

	exchange(t, client, server, protocol.ContentTypeHandshake, []byte("finished"))
	exchange(t, client, server, protocol.ContentTypeApplicationData, []byte("first app data"))
}
