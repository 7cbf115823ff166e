// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "unsafe"

// Validate walks the entire implicit list from minBlock to maxBlock and
// checks every invariant a correctly maintained heap must hold. It is a
// diagnostic for tests and debugging, never called from the front
// operations themselves; it runs in O(n) in the number of blocks plus the
// total length of all buckets.
func (h *Heap) Validate() bool {
	if h.minBlock == nil {
		return true
	}

	linked := make(map[unsafe.Pointer]bool)
	for i := 0; i < numBuckets; i++ {
		for cur := h.buckets[i]; cur != nil; cur = asNode(cur).next {
			if linked[cur] {
				return false
			}
			linked[cur] = true
			if bucketIndex(headerOf(cur).size()) != i {
				return false
			}
		}
	}

	seen := make(map[unsafe.Pointer]bool)
	prevWasFree := false
	p := h.minBlock

	for {
		hdr := headerOf(p)
		size := hdr.size()

		if size%8 != 0 {
			return false
		}

		if seen[p] {
			return false
		}
		seen[p] = true

		if prev, ok := h.prevPayload(p); ok {
			if headerOf(prev).size() != hdr.prevSize {
				return false
			}
			if headerOf(prev).isFree() != hdr.hasPrevFree() {
				return false
			}
		}

		if hdr.isFree() && prevWasFree {
			return false
		}

		if hdr.isFree() && !isGarbage(size) && !linked[p] {
			return false
		}
		if !hdr.isFree() && linked[p] {
			return false
		}

		next, ok := h.nextPayload(p)
		if !ok {
			if hdr.hasNextFree() {
				return false
			}
			break
		}

		if hdr.isFree() != headerOf(next).hasPrevFree() {
			return false
		}
		if headerOf(next).isFree() != hdr.hasNextFree() {
			return false
		}

		prevWasFree = hdr.isFree()
		p = next
	}

	return p == h.maxBlock
}
