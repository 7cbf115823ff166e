// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"unsafe"

	"github.com/cznic/mathutil"
)

// numBuckets is the number of size-class buckets in the segregated
// free-list index.
const numBuckets = 15

// freeNode is the doubly-linked list threading stored in the payload of a
// free block large enough to carry it (payload >= minPayload). It is cast
// directly onto the block's memory, the same technique cznic/memory uses for
// its own recycled-slot lists.
type freeNode struct {
	prev, next unsafe.Pointer
}

func asNode(payload unsafe.Pointer) *freeNode { return (*freeNode)(payload) }

// bucketIndex computes the size-class bucket for size using
// floor(log2(size)) - 2, clamped to [0, numBuckets-1], matching the
// clz_bucket formula in spec §4.3 (min(31-clz(size)-2, 14), which is the
// same expression as bits_used(size)-3). mathutil.BitLen plays the role of
// count-leading-zeros here, exactly as it does in cznic/memory's own
// power-of-two size-class computation.
func bucketIndex(size uint32) int {
	if size == 0 {
		size = 1
	}
	idx := mathutil.BitLen(int(size)) - 3
	if idx < 0 {
		idx = 0
	}
	if idx > numBuckets-1 {
		idx = numBuckets - 1
	}
	return idx
}

// freelistInsert splices payload into its bucket in ascending size order.
func (h *Heap) freelistInsert(payload unsafe.Pointer, size uint32) {
	idx := bucketIndex(size)
	n := asNode(payload)

	var prev unsafe.Pointer
	cur := h.buckets[idx]
	for cur != nil && headerOf(cur).size() < size {
		prev = cur
		cur = asNode(cur).next
	}

	n.prev = prev
	n.next = cur
	if cur != nil {
		asNode(cur).prev = payload
	}
	if prev != nil {
		asNode(prev).next = payload
	} else {
		h.buckets[idx] = payload
	}
}

// freelistRemove unlinks payload (of the given size, to locate its bucket)
// from its bucket's list in O(1).
func (h *Heap) freelistRemove(payload unsafe.Pointer, size uint32) {
	idx := bucketIndex(size)
	n := asNode(payload)

	if n.prev != nil {
		asNode(n.prev).next = n.next
	} else {
		h.buckets[idx] = n.next
	}
	if n.next != nil {
		asNode(n.next).prev = n.prev
	}
	n.prev, n.next = nil, nil
}

// freelistSearch finds a free block of size >= req, preferring the bucket
// req belongs to (best-fit within the bucket) and falling back to any block
// in the next non-empty higher bucket (every such block is necessarily big
// enough, since its bucket's class lower bound already exceeds req).
func (h *Heap) freelistSearch(req uint32) (unsafe.Pointer, bool) {
	idx := bucketIndex(req)
	for cur := h.buckets[idx]; cur != nil; cur = asNode(cur).next {
		if headerOf(cur).size() >= req {
			return cur, true
		}
	}

	for i := idx + 1; i < numBuckets; i++ {
		if h.buckets[i] != nil {
			return h.buckets[i], true
		}
	}

	return nil, false
}

// isGarbage reports whether a free block of this size is too small to hold
// free-list threading and is therefore never linked into a bucket.
func isGarbage(size uint32) bool { return size < minPayload }
