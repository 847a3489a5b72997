package idtable

import (
	"errors"
	"testing"

	vidErrors "github.com/wippyai/mpi-vid/errors"
)

type commID uint64

func TestTable_Basic(t *testing.T) {
	tbl := New[commID]("MpiComm", 0)

	v, ok := tbl.NewVirtualID()
	if !ok {
		t.Fatal("NewVirtualID failed")
	}
	if v == 0 {
		t.Fatal("Expected non-null virtual id")
	}

	tbl.UpdateMapping(v, 100)

	if got := tbl.VirtualToReal(v); got != 100 {
		t.Errorf("VirtualToReal = %d, want 100", got)
	}
	if got := tbl.RealToVirtual(100); got != v {
		t.Errorf("RealToVirtual = %d, want %d", got, v)
	}
	if !tbl.VirtualIDExists(v) || !tbl.RealIDExists(100) {
		t.Error("Expected both directions to exist")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tbl.Len())
	}

	tbl.Erase(v)
	if tbl.VirtualIDExists(v) || tbl.RealIDExists(100) {
		t.Error("Expected both directions to be gone after Erase")
	}
	if tbl.Len() != 0 {
		t.Errorf("Len = %d, want 0", tbl.Len())
	}
}

func TestTable_Accessors(t *testing.T) {
	tbl := New[uint32]("MpiType", 0x0c000000, WithMaxID(1000))
	if tbl.Name() != "MpiType" {
		t.Errorf("Name = %q", tbl.Name())
	}
	if tbl.Null() != 0x0c000000 {
		t.Errorf("Null = %#x", tbl.Null())
	}
	if tbl.Max() != 1000 {
		t.Errorf("Max = %d", tbl.Max())
	}
}

func TestTable_LookupMissing(t *testing.T) {
	tbl := New[uint64]("MpiGroup", 0)

	if _, ok := tbl.LookupVirtual(7); ok {
		t.Error("LookupVirtual should fail for unknown id")
	}
	if got, ok := tbl.LookupReal(7); ok || got != 0 {
		t.Errorf("LookupReal = %d, %v; want null, false", got, ok)
	}
}

func TestTable_PanicsOnUnknown(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Table[uint64])
	}{
		{"VirtualToReal", func(tbl *Table[uint64]) { tbl.VirtualToReal(42) }},
		{"RealToVirtual", func(tbl *Table[uint64]) { tbl.RealToVirtual(42) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := New[uint64]("MpiOp", 0)
			defer func() {
				rec := recover()
				if rec == nil {
					t.Fatal("expected panic")
				}
				err, ok := rec.(error)
				if !ok {
					t.Fatalf("panic value %T is not an error", rec)
				}
				want := &vidErrors.Error{Phase: vidErrors.PhaseLookup, Kind: vidErrors.KindNotFound}
				if !errors.Is(err, want) {
					t.Errorf("panic error = %v, want lookup/not_found", err)
				}
			}()
			tt.fn(tbl)
		})
	}
}

func TestTable_AllocatorMonotonic(t *testing.T) {
	tbl := New[uint64]("MpiComm", 0)

	seen := make(map[uint64]bool)
	var last uint64
	for i := 0; i < 100; i++ {
		v, ok := tbl.NewVirtualID()
		if !ok {
			t.Fatalf("NewVirtualID %d failed", i)
		}
		if seen[v] {
			t.Fatalf("Virtual id %d handed out twice", v)
		}
		if v <= last {
			t.Fatalf("Virtual id %d not greater than previous %d", v, last)
		}
		seen[v] = true
		last = v
	}
}

func TestTable_AllocatorNeverReissuesErased(t *testing.T) {
	tbl := New[uint64]("MpiComm", 0)

	v1, _ := tbl.NewVirtualID()
	tbl.UpdateMapping(v1, 10)
	tbl.Erase(v1)

	v2, _ := tbl.NewVirtualID()
	if v2 == v1 {
		t.Fatalf("Erased virtual id %d was reissued", v1)
	}
}

func TestTable_AllocatorSkipsNull(t *testing.T) {
	tbl := New[uint32]("MpiComm", 2)

	v1, _ := tbl.NewVirtualID()
	v2, _ := tbl.NewVirtualID()
	if v1 != 1 || v2 != 3 {
		t.Errorf("got %d, %d; want 1, 3", v1, v2)
	}
}

func TestTable_AllocatorSkipsLiveKeys(t *testing.T) {
	tbl := New[uint32]("MpiComm", 0)

	// Bind ids ahead of the counter directly.
	tbl.UpdateMapping(1, 100)
	tbl.UpdateMapping(2, 200)

	v, ok := tbl.NewVirtualID()
	if !ok {
		t.Fatal("NewVirtualID failed")
	}
	if v != 3 {
		t.Errorf("NewVirtualID = %d, want 3", v)
	}
}

func TestTable_Exhaustion(t *testing.T) {
	tbl := New[uint32]("MpiOp", 0, WithMaxID(3))

	for want := uint32(1); want <= 3; want++ {
		v, ok := tbl.NewVirtualID()
		if !ok || v != want {
			t.Fatalf("NewVirtualID = %d, %v; want %d, true", v, ok, want)
		}
	}
	if tbl.Exhausted() != true {
		t.Error("Expected table to be exhausted after handing out max id")
	}

	v, ok := tbl.NewVirtualID()
	if ok {
		t.Fatalf("NewVirtualID = %d after exhaustion, want failure", v)
	}
	if v != 0 {
		t.Errorf("Exhausted allocator returned %d, want null", v)
	}

	// Clearing entries does not revive the allocator.
	tbl.Clear()
	if _, ok := tbl.NewVirtualID(); ok {
		t.Error("Allocator should stay exhausted after Clear")
	}
}

func TestTable_ExhaustionAtTypeLimit(t *testing.T) {
	tbl := New[uint32]("MpiComm", 0, WithFirstID(0xfffffffe))

	v1, ok1 := tbl.NewVirtualID()
	v2, ok2 := tbl.NewVirtualID()
	if !ok1 || !ok2 || v1 != 0xfffffffe || v2 != 0xffffffff {
		t.Fatalf("got %#x/%v, %#x/%v", v1, ok1, v2, ok2)
	}
	if _, ok := tbl.NewVirtualID(); ok {
		t.Fatal("Counter wrapped instead of reporting exhaustion")
	}
}

func TestTable_ExhaustionWhenLastIDLive(t *testing.T) {
	tbl := New[uint32]("MpiComm", 0, WithMaxID(2))
	tbl.UpdateMapping(2, 20)

	v, ok := tbl.NewVirtualID()
	if !ok || v != 1 {
		t.Fatalf("NewVirtualID = %d, %v; want 1, true", v, ok)
	}
	if _, ok := tbl.NewVirtualID(); ok {
		t.Fatal("Expected exhaustion, id 2 is live")
	}
}

func TestTable_FirstIDBeyondMax(t *testing.T) {
	tbl := New[uint32]("MpiComm", 0, WithFirstID(10), WithMaxID(5))
	if _, ok := tbl.NewVirtualID(); ok {
		t.Fatal("Expected empty id space")
	}
}

func TestTable_MaxBelowDefaultFirst(t *testing.T) {
	tbl := New[uint64]("MpiComm", 0, WithMaxID(0))
	if tbl.Max() != 0 {
		t.Errorf("Max = %d, want 0", tbl.Max())
	}
	if !tbl.Exhausted() {
		t.Error("Expected table to start exhausted")
	}
	for i := 0; i < 2; i++ {
		if id, ok := tbl.NewVirtualID(); ok {
			t.Fatalf("NewVirtualID() = %d, true; want no id above Max", id)
		}
	}

	// A non-zero null must not let id 0 slip out either.
	tbl = New[uint64]("MpiType", 0x0c000000, WithMaxID(0))
	if id, ok := tbl.NewVirtualID(); ok {
		t.Fatalf("NewVirtualID() = %d, true; want exhausted", id)
	}
}

func TestTable_UpdateMappingOverwrites(t *testing.T) {
	tbl := New[uint64]("MpiComm", 0)
	v, _ := tbl.NewVirtualID()

	tbl.UpdateMapping(v, 100)
	tbl.UpdateMapping(v, 200)

	if got := tbl.VirtualToReal(v); got != 200 {
		t.Errorf("VirtualToReal = %d, want 200", got)
	}
	if tbl.RealIDExists(100) {
		t.Error("Stale real id 100 should be gone")
	}
	if got := tbl.RealToVirtual(200); got != v {
		t.Errorf("RealToVirtual(200) = %d, want %d", got, v)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tbl.Len())
	}
}

func TestTable_UpdateMappingSameReal(t *testing.T) {
	tbl := New[uint64]("MpiComm", 0)
	tbl.UpdateMapping(1, 100)
	tbl.UpdateMapping(1, 100)

	if tbl.Len() != 1 || tbl.RealToVirtual(100) != 1 {
		t.Error("Rebinding to the same real id should be a no-op")
	}
}

func TestTable_UpdateMappingSwap(t *testing.T) {
	// Restart may hand the real ids back in a different order.
	tbl := New[uint64]("MpiComm", 0)
	tbl.UpdateMapping(1, 100)
	tbl.UpdateMapping(2, 200)

	tbl.UpdateMapping(1, 200)
	tbl.UpdateMapping(2, 100)

	if tbl.VirtualToReal(1) != 200 || tbl.VirtualToReal(2) != 100 {
		t.Fatalf("forward = %d, %d", tbl.VirtualToReal(1), tbl.VirtualToReal(2))
	}
	if tbl.RealToVirtual(200) != 1 || tbl.RealToVirtual(100) != 2 {
		t.Fatalf("reverse = %d, %d", tbl.RealToVirtual(200), tbl.RealToVirtual(100))
	}
}

func TestTable_EraseKeepsNewerOwner(t *testing.T) {
	tbl := New[uint64]("MpiComm", 0)
	tbl.UpdateMapping(1, 100)
	tbl.UpdateMapping(2, 100) // 100 now resolves to 2; 1 is stale

	tbl.Erase(1)
	if got, ok := tbl.LookupReal(100); !ok || got != 2 {
		t.Errorf("LookupReal(100) = %d, %v; want 2, true", got, ok)
	}
}

func TestTable_EraseUnknownIsNoop(t *testing.T) {
	tbl := New[uint64]("MpiComm", 0)
	tbl.UpdateMapping(1, 100)

	tbl.Erase(99)
	if tbl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tbl.Len())
	}
}

func TestTable_Each(t *testing.T) {
	tbl := New[uint64]("MpiComm", 0)
	tbl.UpdateMapping(3, 30)
	tbl.UpdateMapping(1, 10)
	tbl.UpdateMapping(2, 20)

	var order []uint64
	tbl.Each(func(virt, real uint64) bool {
		if real != virt*10 {
			t.Errorf("entry %d -> %d", virt, real)
		}
		order = append(order, virt)
		return true
	})
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("Each order = %v, want [1 2 3]", order)
	}

	count := 0
	tbl.Each(func(_, _ uint64) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("Each visited %d entries after early stop, want 1", count)
	}
}

func TestTable_Clear(t *testing.T) {
	tbl := New[uint64]("MpiComm", 0)
	v1, _ := tbl.NewVirtualID()
	tbl.UpdateMapping(v1, 100)

	tbl.Clear()
	if tbl.Len() != 0 || tbl.RealIDExists(100) {
		t.Fatal("Clear left entries behind")
	}

	v2, _ := tbl.NewVirtualID()
	if v2 == v1 {
		t.Error("Clear rewound the allocator")
	}
}

func TestTable_UintptrHandles(t *testing.T) {
	tbl := New[uintptr]("MpiComm", 0)
	v, ok := tbl.NewVirtualID()
	if !ok {
		t.Fatal("NewVirtualID failed")
	}
	tbl.UpdateMapping(v, 0xdeadbeef)
	if tbl.VirtualToReal(v) != 0xdeadbeef {
		t.Error("uintptr round trip failed")
	}
}
