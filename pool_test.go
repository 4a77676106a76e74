package mpegdec

import (
	"errors"
	"testing"
)

func TestSurfacePool_Provision(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"full", MaxSurfaces},
		{"decode only", DecodeOnlySurfaces},
		{"single", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := NewNullDevice()
			p := newSurfacePool()
			if err := p.provision(dev, tt.count, Chroma420, 720, 576); err != nil {
				t.Fatalf("provision: %v", err)
			}
			if p.Provisioned() != tt.count {
				t.Errorf("Provisioned() = %d, want %d", p.Provisioned(), tt.count)
			}
			if p.Capacity() != MaxSurfaces {
				t.Errorf("Capacity() = %d, want %d", p.Capacity(), MaxSurfaces)
			}
			for i := 0; i < MaxSurfaces; i++ {
				if got := p.Slot(i).Valid(); got != (i < tt.count) {
					t.Errorf("Slot(%d).Valid() = %v", i, got)
				}
			}
			if dev.LiveSurfaces() != tt.count {
				t.Errorf("LiveSurfaces() = %d, want %d", dev.LiveSurfaces(), tt.count)
			}

			p.release(dev)
			if dev.LiveSurfaces() != 0 {
				t.Errorf("LiveSurfaces() after release = %d", dev.LiveSurfaces())
			}
			if p.Provisioned() != 0 {
				t.Errorf("Provisioned() after release = %d", p.Provisioned())
			}
		})
	}
}

func TestSurfacePool_ProvisionInvalidCount(t *testing.T) {
	for _, n := range []int{0, -1, MaxSurfaces + 1} {
		p := newSurfacePool()
		if err := p.provision(NewNullDevice(), n, Chroma420, 16, 16); err == nil {
			t.Errorf("provision(%d) succeeded", n)
		}
	}
}

func TestSurfacePool_ProvisionFailureKeepsCreated(t *testing.T) {
	dev := NewNullDevice()
	dev.FailSurfaceAt = 3

	p := newSurfacePool()
	err := p.provision(dev, MaxSurfaces, Chroma420, 16, 16)
	if !IsStatus(err, StatusResources) {
		t.Fatalf("provision error = %v, want StatusResources", err)
	}
	if p.Provisioned() != 2 {
		t.Errorf("Provisioned() = %d, want 2", p.Provisioned())
	}

	p.release(dev)
	if dev.LiveSurfaces() != 0 {
		t.Errorf("LiveSurfaces() after release = %d, want 0", dev.LiveSurfaces())
	}
}

func TestSurfacePool_Slot(t *testing.T) {
	p := newSurfacePool()
	for _, i := range []int{-1, 0, MaxSurfaces} {
		if p.Slot(i).Valid() {
			t.Errorf("Slot(%d) on empty pool = %v", i, p.Slot(i))
		}
	}
}

func TestSurfacePool_SelectTarget(t *testing.T) {
	p := newSurfacePool()
	p.slots = [MaxSurfaces]BufferHandle{10, 11, 12, 13}
	p.provisioned = MaxSurfaces

	tests := []struct {
		name    string
		exclude []BufferHandle
		want    BufferHandle
	}{
		{"no references", []BufferHandle{InvalidHandle, InvalidHandle}, 10},
		{"one reference", []BufferHandle{InvalidHandle, 10}, 11},
		{"two references", []BufferHandle{10, 11}, 12},
		{"references out of order", []BufferHandle{11, 10}, 12},
		{"later slots", []BufferHandle{12, 13}, 10},
		{"unknown handle", []BufferHandle{99}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.SelectTarget(tt.exclude...)
			if err != nil {
				t.Fatalf("SelectTarget: %v", err)
			}
			if got != tt.want {
				t.Errorf("SelectTarget(%v) = %v, want %v", tt.exclude, got, tt.want)
			}
		})
	}
}

func TestSurfacePool_SelectTargetSkipsUnprovisioned(t *testing.T) {
	p := newSurfacePool()
	p.slots[0], p.slots[1], p.slots[2] = 10, 11, 12
	p.provisioned = DecodeOnlySurfaces

	got, err := p.SelectTarget(10, 11)
	if err != nil || got != 12 {
		t.Fatalf("SelectTarget(10, 11) = %v, %v; want 12", got, err)
	}
}

func TestSurfacePool_Exhausted(t *testing.T) {
	p := newSurfacePool()
	p.slots[0], p.slots[1] = 10, 11
	p.provisioned = 2

	_, err := p.SelectTarget(10, 11)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("SelectTarget error = %v, want ErrPoolExhausted", err)
	}

	empty := newSurfacePool()
	if _, err := empty.SelectTarget(); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("SelectTarget on empty pool error = %v, want ErrPoolExhausted", err)
	}
}

func TestSurfacePool_HandlesIsCopy(t *testing.T) {
	p := newSurfacePool()
	p.slots[0] = 10
	p.provisioned = 1

	h := p.Handles()
	h[0] = 99
	if p.Slot(0) != 10 {
		t.Errorf("Handles() aliases the pool")
	}
}
