// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"bytes"
	"testing"
)

func FuzzRecordUnmarshal(f *testing.F) {
	f.Add([]byte{0x16, 0x03, 0x03, 0x00, 0x02, 'h', 'i'})
	f.Add([]byte{0x17, 0x03, 0x01, 0x00, 0x00})
	f.Add([]byte{0x15, 0x03, 0x04, 0x40, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		var rec Record
		if err := rec.Unmarshal(data); err != nil {
			return
		}

		buf, err := rec.Marshal()
		if err != nil {
			t.Fatalf("marshal of decoded record failed: %v", err)
		}
		if !bytes.Equal(buf, data[:len(buf)]) {
			t.Fatalf("re-encoded record diverged from input: %x != %x", buf, data[:len(buf)])
		}

		var again Record
		if err := again.Unmarshal(buf); err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}
		if again.Header != rec.Header {
			t.Fatalf("headers diverged after round trip: %+v != %+v", again.Header, rec.Header)
		}
	})
}
