// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memory implements a general-purpose heap allocator over a
// page-granular memory segment.
//
// The allocator keeps every block of the heap in one implicit,
// boundary-tagged list, in address order, and indexes free blocks by size
// class through a segregated free-list of 15 buckets threaded through the
// payload of the free blocks themselves. Allocation requests are served
// best-fit within a bucket; oversized fits are split, undersized or
// unservable requests grow the segment by whole pages. Freed blocks are
// coalesced with any free neighbor before being reinserted.
//
// A Heap is single-threaded: every exported method must be called from one
// goroutine at a time, and no method blocks except through the underlying
// Segment, which may perform a real syscall to grow the address space.
package memory

import (
	"fmt"
	"os"
	"unsafe"
)

// trace, when true, makes every front operation print a one-line trace of
// its arguments and result to stderr. It exists for interactive debugging
// only and is false in any normal build.
var trace = false

// roundup rounds n up to the nearest multiple of m. m must be a power of
// two.
func roundup(n, m uint32) uint32 { return (n + m - 1) &^ (m - 1) }

// Heap is a single allocator instance. Its zero value is not ready for
// use — call Init first, as spec requires.
type Heap struct {
	seg Segment

	buckets  [numBuckets]unsafe.Pointer
	minBlock unsafe.Pointer
	maxBlock unsafe.Pointer

	pagesCommitted int
	allocs         int
	frees          int
	bytesInUse     int64
}

// NewHeap returns a Heap that will request pages from seg. A nil seg makes
// the Heap use the platform default Segment (NewSegment) on the first call
// to Init.
func NewHeap(seg Segment) *Heap { return &Heap{seg: seg} }

func tracef(format string, args ...interface{}) {
	if !trace {
		return
	}

	fmt.Fprintf(os.Stderr, format, args...)
}
