// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "unsafe"

// finalizeAlloc carves a block of size req out of a candidate block p whose
// header currently reports size tmp (tmp >= req), installing whatever
// remains above req as either a linked free remainder, an unlinked garbage
// tail, or nothing at all (perfect fit) — the three cases in spec §4.4. p's
// header must not yet be shrunk; p itself must not currently be reachable
// from any bucket (the caller is responsible for having removed it, if it
// came from the free-list index, before calling in).
//
// Callers from the page extender (§4.5) must set h.maxBlock = p before
// calling, since a freshly extended page never has a block above it.
func (h *Heap) finalizeAlloc(p unsafe.Pointer, tmp, req uint32) unsafe.Pointer {
	wasMax := p == h.maxBlock

	var abovePayload unsafe.Pointer
	if !wasMax {
		abovePayload = unsafe.Pointer(uintptr(p) + uintptr(tmp) + uintptr(headerSize))
	}

	pHdr := headerOf(p)
	pHdr.clearFree()

	leftover := tmp - req
	switch {
	case leftover >= headerSize+minPayload:
		// Clean split: shrink p, install a linked free remainder.
		pHdr.setSize(req)

		remPayload := unsafe.Pointer(uintptr(p) + uintptr(req) + uintptr(headerSize))
		remSize := leftover - headerSize
		remHdr := headerOf(remPayload)
		remHdr.setSize(remSize)
		remHdr.setPrevSize(req)
		remHdr.clearPrevFree()
		remHdr.setFree()

		if wasMax {
			remHdr.clearNextFree()
			h.maxBlock = remPayload
		} else {
			aboveHdr := headerOf(abovePayload)
			aboveHdr.setPrevSize(remSize)
			aboveHdr.setPrevFree()
			if aboveHdr.isFree() {
				remHdr.setNextFree()
			} else {
				remHdr.clearNextFree()
			}
		}

		h.freelistInsert(remPayload, remSize)
		pHdr.setNextFree()

	case leftover != 0:
		// Garbage tail: too small to thread, but still free and
		// coalescible — never inserted into a bucket.
		pHdr.setSize(req)

		garbagePayload := unsafe.Pointer(uintptr(p) + uintptr(req) + uintptr(headerSize))
		garbageSize := leftover - headerSize
		gHdr := headerOf(garbagePayload)
		gHdr.setSize(garbageSize)
		gHdr.setPrevSize(req)
		gHdr.clearPrevFree()
		gHdr.setFree()

		pHdr.setNextFree()

		if wasMax {
			gHdr.clearNextFree()
			h.maxBlock = garbagePayload
		} else {
			aboveHdr := headerOf(abovePayload)
			aboveHdr.setPrevSize(garbageSize)
			aboveHdr.setPrevFree()
			if aboveHdr.isFree() {
				gHdr.setNextFree()
			} else {
				gHdr.clearNextFree()
			}
		}

	default:
		// Perfect fit: no leftover at all.
		pHdr.clearNextFree()
		if !wasMax {
			headerOf(abovePayload).clearPrevFree()
		}
	}

	if predPayload, ok := h.prevPayload(p); ok {
		predHdr := headerOf(predPayload)
		predHdr.clearNextFree()
		if predHdr.isFree() {
			pHdr.setPrevFree()
		} else {
			pHdr.clearPrevFree()
		}
	} else {
		pHdr.clearPrevFree()
	}

	return p
}

// coalesce fuses the block at p with any free neighbors per the four-case
// table in spec §4.4, unlinking any non-garbage neighbor absorbed along the
// way and keeping minBlock/maxBlock accurate. It returns the canonical
// (lowest-addressed) payload of the merged run and its new size; the merged
// block's own header fields (size, FREE, and the neighbor-facing PREV_FREE/
// NEXT_FREE bits) are finalized by the caller (Free), since coalesce alone
// doesn't yet know whether the result will be linked or left as garbage.
func (h *Heap) coalesce(p unsafe.Pointer) (unsafe.Pointer, uint32) {
	hdr := headerOf(p)
	size := hdr.size()
	prevFree := hdr.hasPrevFree()
	nextFree := hdr.hasNextFree()

	nextP, hasNext := h.nextPayload(p)
	prevP, hasPrev := h.prevPayload(p)

	topReached := !hasNext
	bottomReached := !hasPrev

	canonical := p

	if nextFree {
		topReached = nextP == h.maxBlock
		nextHdr := headerOf(nextP)
		nextSize := nextHdr.size()
		if !isGarbage(nextSize) {
			h.freelistRemove(nextP, nextSize)
		}
		size += headerSize + nextSize
	}

	if prevFree {
		bottomReached = prevP == h.minBlock
		prevHdr := headerOf(prevP)
		prevSize := prevHdr.size()
		if !isGarbage(prevSize) {
			h.freelistRemove(prevP, prevSize)
		}
		size += headerSize + prevSize
		canonical = prevP
	}

	if topReached {
		h.maxBlock = canonical
	}
	if bottomReached {
		h.minBlock = canonical
	}

	return canonical, size
}

// growInPlace implements the Realloc fast path: if old borders a free
// neighbor big enough to cover the growth (current+neighbor >= req+16), it
// consumes exactly req-current bytes from the neighbor and frees whatever
// of the neighbor is left over, leaving old's address unchanged. It reports
// whether the growth happened; on false, old is untouched.
func (h *Heap) growInPlace(old unsafe.Pointer, current, req uint32) bool {
	oldHdr := headerOf(old)
	if !oldHdr.hasNextFree() {
		return false
	}

	next, ok := h.nextPayload(old)
	if !ok {
		return false
	}

	nextHdr := headerOf(next)
	neighborSize := nextHdr.size()
	if current+neighborSize < req+minPayload {
		return false
	}

	if !isGarbage(neighborSize) {
		h.freelistRemove(next, neighborSize)
	}

	wasMax := next == h.maxBlock
	var abovePayload unsafe.Pointer
	if !wasMax {
		abovePayload, _ = h.nextPayload(next)
	}

	remainderSize := current + neighborSize - req
	remPayload := unsafe.Pointer(uintptr(old) + uintptr(req) + uintptr(headerSize))
	remHdr := headerOf(remPayload)
	remHdr.setSize(remainderSize)
	remHdr.setPrevSize(req)
	remHdr.clearPrevFree()
	remHdr.setFree()

	oldHdr.setSize(req)
	oldHdr.setNextFree()

	if wasMax {
		remHdr.clearNextFree()
		h.maxBlock = remPayload
	} else {
		aboveHdr := headerOf(abovePayload)
		aboveHdr.setPrevSize(remainderSize)
		aboveHdr.setPrevFree()
		if aboveHdr.isFree() {
			remHdr.setNextFree()
		} else {
			remHdr.clearNextFree()
		}
	}

	h.freelistInsert(remPayload, remainderSize)
	return true
}
