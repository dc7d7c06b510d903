package main

import "testing"

func TestResolveAdmin(t *testing.T) {
	addr, err := resolveAdmin("0x0102030405060708090a0b0c0d0e0f1011121314")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if addr[0] != 0x01 || addr[19] != 0x14 {
		t.Fatalf("unexpected address bytes: %x", addr)
	}

	if addr, err = resolveAdmin("  "); err != nil || addr != ([20]byte{}) {
		t.Fatalf("expected zero address for empty input, got %x err %v", addr, err)
	}
	if _, err = resolveAdmin("0xzz"); err == nil {
		t.Fatalf("expected decode failure")
	}
	if _, err = resolveAdmin("0x0102"); err == nil {
		t.Fatalf("expected length failure")
	}
}
