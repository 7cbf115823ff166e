// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2017 The Memory Authors.

//go:build unix

package memory

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// reserveAddressSpace reserves size bytes of address space without backing
// them with physical memory (PROT_NONE), so committing pages into it later
// with mprotect can never collide with an unrelated mapping. unix.Mmap is
// used instead of the stdlib syscall package because syscall.Mprotect below
// it is only wired up for linux and darwin; golang.org/x/sys/unix implements
// the whole Mmap/Mprotect/Munmap trio across the full unix build-tag set.
func reserveAddressSpace(size int) (uintptr, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, err
	}

	addr := uintptr(unsafe.Pointer(&b[0]))
	if addr&uintptr(osPageMask) != 0 {
		panic("memory: mmap returned a misaligned address")
	}

	return addr, nil
}

// commitPages makes the [offset, offset+size) byte range within the
// reservation starting at base readable and writable.
func commitPages(base uintptr, offset, size int) error {
	b := unsafe.Slice((*byte)(unsafe.Pointer(base+uintptr(offset))), size)
	return unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE)
}

// releaseAddressSpace returns the entire reservation to the OS.
func releaseAddressSpace(base uintptr, size int) error {
	b := unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
	return unix.Munmap(b)
}
