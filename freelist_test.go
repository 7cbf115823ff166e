// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "testing"

func TestBucketIndexMonotonic(t *testing.T) {
	prev := bucketIndex(minPayload)
	for size := uint32(minPayload); size < 1<<20; size += 8 {
		idx := bucketIndex(size)
		if idx < prev {
			t.Fatalf("bucketIndex(%d) = %d, regressed from %d", size, idx, prev)
		}
		if idx < 0 || idx >= numBuckets {
			t.Fatalf("bucketIndex(%d) = %d out of range", size, idx)
		}
		prev = idx
	}
}

func TestBucketIndexClampsLargeSizes(t *testing.T) {
	if got := bucketIndex(1 << 30); got != numBuckets-1 {
		t.Fatalf("bucketIndex(huge) = %d, want %d", got, numBuckets-1)
	}
}

func TestFreelistInsertRemoveAscending(t *testing.T) {
	h := newTestHeap(t)

	sizes := []int{256, 4096, 64, 1024, 128}
	var blocks [][]byte
	for _, s := range sizes {
		b, err := h.Alloc(s)
		if err != nil {
			t.Fatal(err)
		}
		blocks = append(blocks, b)
	}

	for _, b := range blocks {
		if err := h.Free(b); err != nil {
			t.Fatal(err)
		}
	}

	if !h.Validate() {
		t.Fatal("heap invalid after insert/remove churn")
	}

	idx := bucketIndex(roundup(64, 8))
	prevSize := uint32(0)
	for cur := h.buckets[idx]; cur != nil; cur = asNode(cur).next {
		size := headerOf(cur).size()
		if size < prevSize {
			t.Fatalf("bucket %d not ascending: %d before %d", idx, prevSize, size)
		}
		prevSize = size
	}
}
