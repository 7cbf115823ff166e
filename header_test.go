// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"testing"
	"unsafe"
)

func TestHeaderSizeAndFlags(t *testing.T) {
	var raw header
	h := &raw

	h.setSize(256)
	if g, e := h.size(), uint32(256); g != e {
		t.Fatalf("size() = %d, want %d", g, e)
	}

	h.setFree()
	if !h.isFree() {
		t.Fatal("isFree() = false after setFree")
	}
	if g, e := h.size(), uint32(256); g != e {
		t.Fatalf("setFree corrupted size: %d, want %d", g, e)
	}

	h.setNextFree()
	h.setPrevFree()
	if !h.hasNextFree() || !h.hasPrevFree() {
		t.Fatal("flags not set")
	}

	h.clearFree()
	if h.isFree() {
		t.Fatal("isFree() = true after clearFree")
	}
	if !h.hasNextFree() || !h.hasPrevFree() {
		t.Fatal("clearFree disturbed unrelated flags")
	}

	h.clearNextFree()
	h.clearPrevFree()
	if h.hasNextFree() || h.hasPrevFree() {
		t.Fatal("flags not cleared")
	}
}

func TestHeaderPrevSizeSentinelNotMaskedByFlags(t *testing.T) {
	var raw header
	h := &raw

	h.setPrevSize(initMask)
	if !h.prevSizeIsSentinel() {
		t.Fatal("INIT_MASK sentinel lost")
	}

	h.setPrevSize(128)
	if h.prevSizeIsSentinel() {
		t.Fatal("stale sentinel after overwrite")
	}
	if g, e := h.prevSize, uint32(128); g != e {
		t.Fatalf("prevSize = %d, want %d", g, e)
	}
}

func TestHeaderOfPayloadOfRoundtrip(t *testing.T) {
	var buf [64]byte
	payload := unsafe.Pointer(&buf[headerSize])

	hdr := headerOf(payload)
	if got := payloadOf(hdr); got != payload {
		t.Fatalf("payloadOf(headerOf(p)) = %p, want %p", got, payload)
	}
}
