// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "unsafe"

// header is the 8-byte boundary tag sitting immediately before every block's
// payload. sizeAndFlags packs the payload size (bits 2-30, always a
// multiple of 8) together with the FREE, NEXT_FREE and PREV_FREE bits; see
// the flag constants below for exact bit positions.
type header struct {
	sizeAndFlags uint32
	prevSize     uint32
}

const (
	flagFree     uint32 = 0x80000000
	flagNextFree uint32 = 0x00000002
	flagPrevFree uint32 = 0x00000001
	sizeMask     uint32 = 0x7FFFFFFC
	initMask     uint32 = 0xFFFFFFFE

	// minPayload is the smallest payload a block can have and still carry
	// free-list threading (two machine pointers).
	minPayload = 16
)

var headerSize = uint32(unsafe.Sizeof(header{}))

func headerOf(payload unsafe.Pointer) *header {
	return (*header)(unsafe.Pointer(uintptr(payload) - uintptr(headerSize)))
}

func payloadOf(h *header) unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(h)) + uintptr(headerSize))
}

func (h *header) size() uint32      { return h.sizeAndFlags & sizeMask }
func (h *header) isFree() bool      { return h.sizeAndFlags&flagFree != 0 }
func (h *header) hasPrevFree() bool { return h.sizeAndFlags&flagPrevFree != 0 }
func (h *header) hasNextFree() bool { return h.sizeAndFlags&flagNextFree != 0 }

// setSize overwrites the size bits and preserves every flag bit untouched.
// v must already be a multiple of 8 — callers round up before calling.
func (h *header) setSize(v uint32) {
	h.sizeAndFlags = (h.sizeAndFlags &^ sizeMask) | (v & sizeMask)
}

// setPrevSize overwrites the previous-block-size field. Unlike the size
// bits in sizeAndFlags, prevSize carries no flag bits of its own, so the
// value is stored verbatim — including the INIT_MASK sentinel, which would
// be corrupted by masking with sizeMask.
func (h *header) setPrevSize(v uint32) { h.prevSize = v }

// prevSizeIsSentinel reports whether this is the first block in the heap,
// identified by the INIT_MASK sentinel written at init time. Callers should
// prefer comparing the payload address against Heap.minBlock; this is kept
// only to reproduce the sentinel for diagnostics.
func (h *header) prevSizeIsSentinel() bool { return h.prevSize == initMask }

func (h *header) setFree()        { h.sizeAndFlags |= flagFree }
func (h *header) clearFree()      { h.sizeAndFlags &^= flagFree }
func (h *header) setPrevFree()    { h.sizeAndFlags |= flagPrevFree }
func (h *header) clearPrevFree()  { h.sizeAndFlags &^= flagPrevFree }
func (h *header) setNextFree()    { h.sizeAndFlags |= flagNextFree }
func (h *header) clearNextFree()  { h.sizeAndFlags &^= flagNextFree }
