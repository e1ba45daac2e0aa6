package pool

import "testing"

func TestGetFloat64SliceSizing(t *testing.T) {
	slice, cleanup := GetFloat64Slice(128)
	defer cleanup()

	if len(slice) != 128 {
		t.Fatalf("len = %d, want 128", len(slice))
	}
}

func TestGetFloat64SliceReuse(t *testing.T) {
	slice1, cleanup1 := GetFloat64Slice(50)
	ptr1 := &slice1[0]
	cleanup1()

	slice2, cleanup2 := GetFloat64Slice(50)
	defer cleanup2()
	ptr2 := &slice2[0]

	if ptr1 != ptr2 {
		t.Fatal("expected pooled slice to be reused")
	}
}

func TestGetUint32Slice(t *testing.T) {
	slice, cleanup := GetUint32Slice(10)
	defer cleanup()

	if len(slice) != 10 {
		t.Fatalf("len = %d, want 10", len(slice))
	}
}
