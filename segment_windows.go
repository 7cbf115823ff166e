// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2017 The Memory Authors.

//go:build windows

package memory

import "golang.org/x/sys/windows"

// reserveAddressSpace reserves size bytes of address space with
// VirtualAlloc(MEM_RESERVE), the Windows analogue of an anonymous
// PROT_NONE mmap: the range is claimed but not yet backed by memory.
// golang.org/x/sys/windows is used because VirtualAlloc/VirtualFree and the
// MEM_*/PAGE_NOACCESS constants it needs have no equivalent in the stdlib
// syscall package on windows.
func reserveAddressSpace(size int) (uintptr, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return 0, err
	}

	return addr, nil
}

// commitPages backs the [offset, offset+size) byte range within the
// reservation starting at base with physical memory.
func commitPages(base uintptr, offset, size int) error {
	_, err := windows.VirtualAlloc(base+uintptr(offset), uintptr(size), windows.MEM_COMMIT, windows.PAGE_READWRITE)
	return err
}

// releaseAddressSpace returns the entire reservation to the OS. size is
// ignored: MEM_RELEASE only accepts the reservation's base address and a
// zero size.
func releaseAddressSpace(base uintptr, size int) error {
	_ = size
	return windows.VirtualFree(base, 0, windows.MEM_RELEASE)
}
