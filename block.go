// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "unsafe"

// nextPayload returns the payload immediately above p in address order, and
// false if p is the highest-addressed block in the heap.
func (h *Heap) nextPayload(p unsafe.Pointer) (unsafe.Pointer, bool) {
	if p == h.maxBlock {
		return nil, false
	}

	hdr := headerOf(p)
	next := unsafe.Pointer(uintptr(p) + uintptr(hdr.size()))
	return payloadOf((*header)(next)), true
}

// prevPayload returns the payload immediately below p in address order, and
// false if p is the lowest-addressed block in the heap.
func (h *Heap) prevPayload(p unsafe.Pointer) (unsafe.Pointer, bool) {
	if p == h.minBlock {
		return nil, false
	}

	hdr := headerOf(p)
	prev := unsafe.Pointer(uintptr(p) - uintptr(headerSize) - uintptr(hdr.prevSize))
	return prev, true
}

// isFirst reports whether p is the lowest-addressed block currently in the
// heap. Per spec this must be tested against minBlock, never by inspecting
// prevSize, since INIT_MASK only identifies the block first installed by
// Init, not the current low edge after coalescing.
func (h *Heap) isFirst(p unsafe.Pointer) bool { return p == h.minBlock }

// isLast reports whether p is the highest-addressed block currently in the
// heap.
func (h *Heap) isLast(p unsafe.Pointer) bool { return p == h.maxBlock }
