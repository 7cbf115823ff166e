// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"fmt"
	"unsafe"
)

// Stats reports simple bookkeeping counters for a Heap. It is not a
// substitute for Validate and carries no fragmentation analysis.
type Stats struct {
	Allocs         int
	Frees          int
	BytesInUse     int64
	PagesCommitted int
}

// Init (re)initializes h: it resets all bucket and bound state, requests a
// single page from the segment, and installs it as one free block spanning
// the page minus its header. Init must be called before any other method,
// and may be called again to reset the heap.
func (h *Heap) Init() (err error) {
	if h.seg == nil {
		h.seg = NewSegment()
	}

	seg := h.seg
	*h = Heap{seg: seg}

	base, err := h.seg.Init(1)
	if err != nil {
		return fmt.Errorf("memory: init: %w", err)
	}

	h.pagesCommitted = 1

	payload := unsafe.Pointer(uintptr(base) + uintptr(headerSize))
	size := uint32(PageSize) - headerSize

	hdr := headerOf(payload)
	hdr.setSize(size)
	hdr.setPrevSize(initMask)
	hdr.clearPrevFree()
	hdr.clearNextFree()
	hdr.setFree()

	h.minBlock = payload
	h.maxBlock = payload
	h.freelistInsert(payload, size)

	tracef("Init() page=%#x size=%#x\n", base, size)
	return nil
}

// Alloc returns size bytes of writable memory, or nil if size is 0 or the
// segment refuses to grow.
func (h *Heap) Alloc(size int) (r []byte, err error) {
	if trace {
		defer func() {
			var p *byte
			if len(r) != 0 {
				p = &r[0]
			}
			tracef("Alloc(%#x) %p, %v\n", size, p, err)
		}()
	}

	if size < 0 {
		return nil, fmt.Errorf("memory: invalid alloc size %d", size)
	}

	if size == 0 {
		return nil, nil
	}

	req := roundup(uint32(size), 8)
	if req < minPayload {
		req = minPayload
	}

	var payload unsafe.Pointer
	if p, ok := h.freelistSearch(req); ok {
		tmp := headerOf(p).size()
		h.freelistRemove(p, tmp)
		payload = h.finalizeAlloc(p, tmp, req)
	} else {
		payload, err = h.extend(req)
		if err != nil {
			return nil, err
		}
	}

	h.allocs++
	h.bytesInUse += int64(req)
	return sliceFrom(payload, uint32(size), req), nil
}

// Free releases the memory b was allocated with. A nil or zero-capacity b
// is a no-op.
func (h *Heap) Free(b []byte) (err error) {
	if trace {
		var p *byte
		if cap(b) != 0 {
			p = &b[:cap(b)][0]
		}
		defer tracef("Free(%#x) %v\n", p, err)
	}

	b = b[:cap(b)]
	if len(b) == 0 {
		return nil
	}

	p := unsafe.Pointer(&b[0])
	h.frees++
	h.bytesInUse -= int64(headerOf(p).size())

	canonical, size := h.coalesce(p)
	hdr := headerOf(canonical)
	hdr.setSize(size)
	hdr.clearPrevFree()
	hdr.clearNextFree()

	if next, ok := h.nextPayload(canonical); ok {
		nextHdr := headerOf(next)
		nextHdr.setPrevSize(size)
		nextHdr.setPrevFree()
	} else {
		h.maxBlock = canonical
	}

	if prev, ok := h.prevPayload(canonical); ok {
		headerOf(prev).setNextFree()
	} else {
		h.minBlock = canonical
	}

	hdr.setFree()
	if !isGarbage(size) {
		h.freelistInsert(canonical, size)
	}

	return nil
}

// Realloc changes the size of the block b was allocated with. Contents in
// the overlap of the old and new sizes are preserved. A zero-capacity b
// behaves like Alloc(size); a zero size behaves like Free(b). If the block
// moves, the old pointer is freed and must not be used again.
func (h *Heap) Realloc(b []byte, size int) (r []byte, err error) {
	if trace {
		var p0 *byte
		if cap(b) != 0 {
			p0 = &b[:cap(b)][0]
		}
		defer func() {
			var p *byte
			if len(r) != 0 {
				p = &r[0]
			}
			tracef("Realloc(%p, %#x) %p, %v\n", p0, size, p, err)
		}()
	}

	if size < 0 {
		return nil, fmt.Errorf("memory: invalid realloc size %d", size)
	}

	switch {
	case cap(b) == 0:
		return h.Alloc(size)
	case size == 0:
		return nil, h.Free(b)
	}

	full := b[:cap(b)]
	old := unsafe.Pointer(&full[0])
	current := headerOf(old).size()

	req := roundup(uint32(size), 8)
	if req < minPayload {
		req = minPayload
	}

	if req == current {
		return sliceFrom(old, uint32(size), current), nil
	}

	if req > current && h.growInPlace(old, current, req) {
		h.bytesInUse += int64(req - current)
		return sliceFrom(old, uint32(size), req), nil
	}

	newB, err := h.Alloc(size)
	if err != nil {
		return nil, err
	}

	n := current
	if uint32(size) < n {
		n = uint32(size)
	}
	copy(newB, full[:n])

	if err := h.Free(b); err != nil {
		return nil, err
	}

	return newB, nil
}

// Stats returns a snapshot of h's bookkeeping counters.
func (h *Heap) Stats() Stats {
	return Stats{
		Allocs:         h.allocs,
		Frees:          h.frees,
		BytesInUse:     h.bytesInUse,
		PagesCommitted: h.pagesCommitted,
	}
}

// UsableSize reports the real payload size of the block b points into,
// which may be larger than whatever size was originally requested.
func UsableSize(b []byte) int {
	if cap(b) == 0 {
		return 0
	}

	p := unsafe.Pointer(&b[:cap(b)][0])
	return int(headerOf(p).size())
}

// extend grows the segment by enough pages to satisfy req and installs the
// new region as one block, finalized exactly like a free-list hit (§4.5
// mirrors §4.4's three split sub-cases).
func (h *Heap) extend(req uint32) (unsafe.Pointer, error) {
	needed := req + headerSize
	nPages := int((needed + PageSize - 1) / PageSize)

	base, err := h.seg.Extend(nPages)
	if err != nil {
		return nil, err
	}

	h.pagesCommitted += nPages

	tmp := uint32(nPages)*PageSize - headerSize
	payload := unsafe.Pointer(uintptr(base) + uintptr(headerSize))

	hdr := headerOf(payload)
	hdr.setSize(tmp)
	hdr.setPrevSize(headerOf(h.maxBlock).size())
	hdr.clearFree()
	hdr.clearPrevFree()
	hdr.clearNextFree()

	h.maxBlock = payload
	return h.finalizeAlloc(payload, tmp, req), nil
}

// sliceFrom builds a []byte of the given length backed by capacity bytes
// starting at payload.
func sliceFrom(payload unsafe.Pointer, length, capacity uint32) []byte {
	full := unsafe.Slice((*byte)(payload), capacity)
	return full[:length]
}
