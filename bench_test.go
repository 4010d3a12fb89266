// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlsrecord

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/pion/tlsrecord/pkg/protocol"
)

func benchmarkRoundTrip(b *testing.B, suite string, keyLen, ivLen, macLen int, version uint16, payloadLen int) {
	b.Helper()

	transport := &memTransport{}
	sender, err := NewRecordLayer(version, transport, nil)
	if err != nil {
		b.Fatal(err)
	}
	receiver, err := NewRecordLayer(version, transport, nil)
	if err != nil {
		b.Fatal(err)
	}

	protoVersion := protocol.VersionFromUint16(version)
	writeState, readState := cipherStatePair(suite, keyLen, ivLen, macLen, protoVersion)
	if err = sender.ChangeWriteCipherSpec(writeState); err != nil {
		b.Fatal(err)
	}
	if err = receiver.ChangeReadCipherSpec(readState); err != nil {
		b.Fatal(err)
	}

	payload := bytes.Repeat([]byte{0x5a}, payloadLen)
	b.SetBytes(int64(payloadLen))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err = sender.SendRecord(protocol.ContentTypeApplicationData, payload); err != nil {
			b.Fatal(err)
		}
		if _, _, err = receiver.ReceiveRecord(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRoundTripGCM(b *testing.B) {
	for _, size := range []int{256, 1024, 8192} {
		b.Run(fmt.Sprintf("%d", size), func(b *testing.B) {
			benchmarkRoundTrip(b, "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256", 16, 12, 0, 0x0303, size)
		})
	}
}

func BenchmarkRoundTripCBC(b *testing.B) {
	for _, size := range []int{256, 1024, 8192} {
		b.Run(fmt.Sprintf("%d", size), func(b *testing.B) {
			benchmarkRoundTrip(b, "TLS_RSA_WITH_AES_128_CBC_SHA", 16, 16, 20, 0x0303, size)
		})
	}
}

func BenchmarkRoundTripTLS13(b *testing.B) {
	for _, size := range []int{256, 1024, 8192} {
		b.Run(fmt.Sprintf("%d", size), func(b *testing.B) {
			benchmarkRoundTrip(b, "TLS_AES_128_GCM_SHA256", 16, 12, 0, 0x0304, size)
		})
	}
}
