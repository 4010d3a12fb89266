// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package tlsrecord implements the TLS record layer: framing, fragmentation
// and reassembly, the per-version encryption transforms, sequence number
// management and anti-replay protection.
package tlsrecord

import (
	"github.com/pion/logging"
	"github.com/pion/tlsrecord/internal/replaydetector"
	"github.com/pion/tlsrecord/pkg/crypto/ciphersuite"
	"github.com/pion/tlsrecord/pkg/protocol"
	"github.com/pion/tlsrecord/pkg/protocol/recordlayer"
)

// receiveBufferLimit bounds the bytes buffered while waiting for a complete
// record. Two maximum sized records is more than any valid stream needs.
const receiveBufferLimit = 2 * (recordlayer.MaxCiphertextLength + recordlayer.HeaderSize)

type direction struct {
	encrypted   bool
	cipherState *CipherState
}

// RecordLayer frames, protects and unprotects TLS records over a Transport.
// It is not safe for concurrent use; callers drive it from a single
// goroutine per instance.
type RecordLayer struct {
	version protocol.Version
	adapter versionAdapter

	transport Transport
	log       logging.LeveledLogger

	maxFragmentLength int

	replayProtection bool
	replayWindow     *replaydetector.SlidingWindow

	read  direction
	write direction

	receiveBuffer []byte
}

// NewRecordLayer creates a RecordLayer speaking the given protocol version
// (as a uint16, e.g. 0x0303 for TLS 1.2) over transport. Both directions
// start unencrypted. A nil config selects the defaults.
func NewRecordLayer(version uint16, transport Transport, config *Config) (*RecordLayer, error) {
	if transport == nil {
		return nil, errNilTransport
	}

	ver := protocol.VersionFromUint16(version)
	if !protocol.IsSupportedVersion(ver) {
		return nil, ErrUnsupportedVersion
	}

	if config == nil {
		config = &Config{}
	}

	maxFragmentLength := config.MaxFragmentLength
	if maxFragmentLength == 0 {
		maxFragmentLength = defaultMaxFragmentLength
	}
	if maxFragmentLength < minFragmentLength || maxFragmentLength > defaultMaxFragmentLength {
		return nil, ErrInvalidParameter
	}

	var adapter versionAdapter
	if ver.Equal(protocol.Version1_3) {
		adapter = &tls13Adapter{}
	} else {
		adapter = &tls12Adapter{}
	}

	return &RecordLayer{
		version:           ver,
		adapter:           adapter,
		transport:         transport,
		log:               config.loggerFactory().NewLogger("tlsrecord"),
		maxFragmentLength: maxFragmentLength,
		replayProtection:  config.ReplayProtection,
		replayWindow:      replaydetector.New(config.ReplayWindowSize),
	}, nil
}

// Version returns the protocol version the layer was created with.
func (r *RecordLayer) Version() protocol.Version { return r.version }

// SendRecord fragments data, applies the write direction's protection and
// hands each resulting record to the transport. An empty payload sends
// nothing.
func (r *RecordLayer) SendRecord(contentType protocol.ContentType, data []byte) error {
	if !contentType.IsValid() {
		return ErrInvalidParameter
	}

	for len(data) > 0 {
		fragment := data
		if len(fragment) > r.maxFragmentLength {
			fragment = fragment[:r.maxFragmentLength]
		}
		data = data[len(fragment):]

		if err := r.sendFragment(contentType, fragment); err != nil {
			return err
		}
	}

	return nil
}

func (r *RecordLayer) sendFragment(contentType protocol.ContentType, fragment []byte) error {
	pieces := [][]byte{fragment}
	if r.write.encrypted && contentType == protocol.ContentTypeApplicationData &&
		ciphersuite.SelectProtectionStrategy(r.version, r.write.cipherState.SuiteName) == ciphersuite.ProtectionSplitRecords {
		pieces = ciphersuite.SplitRecordMitigation(fragment)
	}

	for _, piece := range pieces {
		rec := &recordlayer.Record{
			Header: recordlayer.Header{
				ContentType: contentType,
				Version:     r.version,
				ContentLen:  uint16(len(piece)), //nolint:gosec
			},
			Fragment: piece,
		}

		if r.write.encrypted {
			if err := r.adapter.applyEncryption(rec, r.write.cipherState); err != nil {
				return err
			}
		}

		raw, err := r.adapter.encodeRecord(rec)
		if err != nil {
			return err
		}

		n, err := r.transport.Send(raw)
		if err != nil {
			return err
		}
		if n != len(raw) {
			return ErrIncompleteSend
		}

		r.log.Tracef("sent record type=%d len=%d", rec.Header.ContentType, len(rec.Fragment))
	}

	return nil
}

// ReceiveRecord blocks until one complete record arrived, unprotects it when
// the read direction is encrypted and returns the content type together with
// the plaintext fragment.
func (r *RecordLayer) ReceiveRecord() (protocol.ContentType, []byte, error) {
	for {
		raw, ok := r.takeBufferedRecord()
		if ok {
			return r.processRecord(raw)
		}

		chunk, err := r.transport.Receive(defaultMaxFragmentLength)
		if err != nil {
			return 0, nil, err
		}
		if len(chunk) == 0 {
			return 0, nil, ErrTransportClosed
		}
		if len(r.receiveBuffer)+len(chunk) > receiveBufferLimit {
			r.receiveBuffer = nil

			return 0, nil, errReceiveBufferOverflow
		}
		r.receiveBuffer = append(r.receiveBuffer, chunk...)
	}
}

// takeBufferedRecord consumes one complete wire record from the front of the
// receive buffer if one is there.
func (r *RecordLayer) takeBufferedRecord() ([]byte, bool) {
	if len(r.receiveBuffer) < recordlayer.HeaderSize {
		return nil, false
	}

	length := int(r.receiveBuffer[3])<<8 | int(r.receiveBuffer[4])
	total := recordlayer.HeaderSize + length
	if len(r.receiveBuffer) < total {
		return nil, false
	}

	raw := make([]byte, total)
	copy(raw, r.receiveBuffer[:total])
	r.receiveBuffer = r.receiveBuffer[total:]

	return raw, true
}

func (r *RecordLayer) processRecord(raw []byte) (protocol.ContentType, []byte, error) {
	rec, err := r.adapter.decodeRecord(raw)
	if err != nil {
		// A framing error poisons the stream; everything after it is
		// unparseable.
		r.receiveBuffer = nil

		return 0, nil, err
	}

	if !r.read.encrypted {
		r.log.Tracef("received record type=%d len=%d", rec.Header.ContentType, len(rec.Fragment))

		return rec.Header.ContentType, rec.Fragment, nil
	}

	seq := r.read.cipherState.SequenceNumber()
	if r.replayProtection && r.replayWindow.IsReplay(seq) {
		return 0, nil, ErrReplayDetected
	}

	contentType, err := r.adapter.applyDecryption(rec, r.read.cipherState)
	if err != nil {
		r.log.Debugf("record %d failed verification: %v", seq, err)

		return 0, nil, err
	}

	if r.replayProtection {
		r.replayWindow.MarkAsProcessed(seq)
	}
	r.log.Tracef("received record type=%d len=%d seq=%d", contentType, len(rec.Fragment), seq)

	return contentType, rec.Fragment, nil
}

// ChangeWriteCipherSpec makes the write direction encrypted using state. The
// sequence number restarts from the state's own counter.
func (r *RecordLayer) ChangeWriteCipherSpec(state *CipherState) error {
	if state == nil {
		return errNilCipherState
	}
	r.write = direction{encrypted: true, cipherState: state}
	r.log.Debugf("write direction now encrypted with %s", state.SuiteName)

	return nil
}

// ChangeReadCipherSpec makes the read direction encrypted using state and
// resets the anti-replay window.
func (r *RecordLayer) ChangeReadCipherSpec(state *CipherState) error {
	if state == nil {
		return errNilCipherState
	}
	r.read = direction{encrypted: true, cipherState: state}
	r.replayWindow.Reset()
	r.log.Debugf("read direction now encrypted with %s", state.SuiteName)

	return nil
}

// SetMaxFragmentLength adjusts the fragmentation threshold for subsequent
// sends. Values outside [64, 16384] are rejected.
func (r *RecordLayer) SetMaxFragmentLength(length int) error {
	if length < minFragmentLength || length > defaultMaxFragmentLength {
		return ErrInvalidParameter
	}
	r.maxFragmentLength = length

	return nil
}

// SetReplayProtection switches the anti-replay window on or off. Turning it
// on starts from an empty window.
func (r *RecordLayer) SetReplayProtection(enabled bool) {
	if enabled && !r.replayProtection {
		r.replayWindow.Reset()
	}
	r.replayProtection = enabled
	r.log.Debugf("replay protection enabled=%t", enabled)
}

// IsReplayProtectionEnabled reports whether the anti-replay window is active.
func (r *RecordLayer) IsReplayProtectionEnabled() bool { return r.replayProtection }

// Close shuts down the underlying transport.
func (r *RecordLayer) Close() error {
	return r.transport.Close()
}
