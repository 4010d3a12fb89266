// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package replaydetector provides the sliding window replay protection used
// by the record layer read direction.
package replaydetector

import (
	"math"

	"github.com/pion/transport/v3/replaydetector"
)

// DefaultWindowSize is the number of recent sequence numbers the window
// remembers.
const DefaultWindowSize = 64

// SlidingWindow rejects sequence numbers that were already accepted, or that
// fell off the back of the window. The zero sequence number is valid; an
// empty window (no record processed yet) accepts anything.
type SlidingWindow struct {
	windowSize uint
	highestSeq int64
	detector   replaydetector.ReplayDetector
}

// New creates a SlidingWindow remembering windowSize sequence numbers.
// A windowSize of 0 selects DefaultWindowSize.
func New(windowSize uint) *SlidingWindow {
	if windowSize == 0 {
		windowSize = DefaultWindowSize
	}
	window := &SlidingWindow{windowSize: windowSize}
	window.Reset()

	return window
}

// Size returns the window size in sequence numbers.
func (w *SlidingWindow) Size() uint { return w.windowSize }

// HighestSequence returns the largest sequence number marked so far, or -1
// when nothing was marked since construction or the last Reset.
func (w *SlidingWindow) HighestSequence() int64 { return w.highestSeq }

// IsReplay reports whether seq was already processed or is too old to tell.
func (w *SlidingWindow) IsReplay(seq uint64) bool {
	if w.highestSeq < 0 {
		return false
	}
	highest := uint64(w.highestSeq)
	if highest >= uint64(w.windowSize) && seq <= highest-uint64(w.windowSize) {
		// Fell off the back of the window, indistinguishable from a replay.
		return true
	}
	if seq > highest {
		return false
	}

	_, ok := w.detector.Check(seq)

	return !ok
}

// MarkAsProcessed records seq in the window, advancing its head when seq is
// the largest value seen so far.
func (w *SlidingWindow) MarkAsProcessed(seq uint64) {
	if accept, ok := w.detector.Check(seq); ok {
		accept()
	}
	if seq <= math.MaxInt64 && int64(seq) > w.highestSeq {
		w.highestSeq = int64(seq)
	}
}

// CheckAndMark reports whether seq is a replay and, if it is not, marks it
// as processed in the same step.
func (w *SlidingWindow) CheckAndMark(seq uint64) bool {
	if w.IsReplay(seq) {
		return true
	}
	w.MarkAsProcessed(seq)

	return false
}

// Reset forgets every sequence number seen so far.
func (w *SlidingWindow) Reset() {
	w.detector = replaydetector.New(w.windowSize, math.MaxUint64)
	w.highestSeq = -1
}
