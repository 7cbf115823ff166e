// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"errors"
	"fmt"
	"os"
	"unsafe"
)

// PageSize is the granularity pages are requested from a Segment in. It
// must be a power of two.
const PageSize = 4096

// maxHeapReservation bounds how much address space a single Heap reserves
// up front. It's an implementation limit, not a spec requirement; a Heap
// that needs more than this many bytes of live pages returns
// ErrSegmentExhausted from Extend.
const maxHeapReservation = 1 << 30 // 1 GiB

// ErrSegmentExhausted is returned when a Segment's reservation has no room
// left for the requested pages.
var ErrSegmentExhausted = errors.New("memory: segment reservation exhausted")

var (
	osPageSize = os.Getpagesize()
	osPageMask = osPageSize - 1
)

// Segment is the page-granular memory provider a Heap is built on top of.
// It plays the role spec §6 assigns to init_heap_segment/extend_heap_segment:
// an external collaborator the allocator core never implements itself.
type Segment interface {
	// Init (re)initializes the segment and returns the base address of a
	// freshly committed nPages-page region.
	Init(nPages int) (unsafe.Pointer, error)
	// Extend grows the segment by nPages more pages, guaranteed
	// contiguous with the region Init/Extend last returned, and returns
	// the new region's starting address.
	Extend(nPages int) (unsafe.Pointer, error)
}

// reservedSegment reserves one large address range up front (Init) and only
// ever commits pages inside it (Extend), so every page handed to the
// allocator is guaranteed contiguous with the rest of the segment. This
// resolves the page-extension contiguity Open Question from spec §9 by
// construction rather than by runtime assertion.
type reservedSegment struct {
	base      uintptr
	reserved  int
	committed int
}

// NewSegment returns the platform default Segment implementation: a
// reserve-then-commit virtual memory region backed by mmap/mprotect on Unix
// and VirtualAlloc on Windows (see segment_unix.go / segment_windows.go).
func NewSegment() Segment { return &reservedSegment{} }

func (s *reservedSegment) Init(nPages int) (unsafe.Pointer, error) {
	if s.base != 0 {
		if err := s.release(); err != nil {
			return nil, err
		}
	}

	base, err := reserveAddressSpace(maxHeapReservation)
	if err != nil {
		return nil, fmt.Errorf("memory: reserve segment: %w", err)
	}

	s.base = base
	s.reserved = maxHeapReservation
	s.committed = 0
	return s.Extend(nPages)
}

func (s *reservedSegment) Extend(nPages int) (unsafe.Pointer, error) {
	size := nPages * PageSize
	if size <= 0 {
		return nil, fmt.Errorf("memory: invalid page count %d", nPages)
	}

	if s.committed+size > s.reserved {
		return nil, ErrSegmentExhausted
	}

	if err := commitPages(s.base, s.committed, size); err != nil {
		return nil, fmt.Errorf("memory: commit pages: %w", err)
	}

	start := s.base + uintptr(s.committed)
	s.committed += size
	return unsafe.Pointer(start), nil
}

func (s *reservedSegment) release() error {
	if s.base == 0 {
		return nil
	}

	err := releaseAddressSpace(s.base, s.reserved)
	s.base, s.reserved, s.committed = 0, 0, 0
	return err
}
