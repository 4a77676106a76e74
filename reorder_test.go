package mpegdec

import (
	"reflect"
	"testing"
)

const (
	pI = PictureIntra
	pP = PicturePredicted
	pB = PictureBidirectional
)

func TestReorder_IPBP(t *testing.T) {
	types := []PictureCodingType{pI, pP, pB, pP}
	slots := []BufferHandle{0, 1, 2, 3}

	if err := Reorder(types, slots); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	if want := []BufferHandle{0, 2, 1, 3}; !reflect.DeepEqual(slots, want) {
		t.Errorf("slots = %v, want %v", slots, want)
	}
	if want := []PictureCodingType{pI, pB, pP, pP}; !reflect.DeepEqual(types, want) {
		t.Errorf("types = %v, want %v", types, want)
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name  string
		types []PictureCodingType
		want  []BufferHandle
	}{
		{"empty", nil, nil},
		{"single", []PictureCodingType{pI}, []BufferHandle{0}},
		{"no B", []PictureCodingType{pI, pP, pP, pP}, []BufferHandle{0, 1, 2, 3}},
		{"IPBB", []PictureCodingType{pI, pP, pB, pB}, []BufferHandle{0, 2, 3, 1}},
		{"IBPB", []PictureCodingType{pI, pB, pP, pB}, []BufferHandle{1, 0, 3, 2}},
		{"IPBBP", []PictureCodingType{pI, pP, pB, pB, pP}, []BufferHandle{0, 2, 3, 1, 4}},
		{"leading B stays", []PictureCodingType{pB, pP, pB}, []BufferHandle{0, 2, 1}},
		{"leading BB", []PictureCodingType{pB, pB, pP}, []BufferHandle{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types := append([]PictureCodingType(nil), tt.types...)
			slots := make([]BufferHandle, len(types))
			for i := range slots {
				slots[i] = BufferHandle(i)
			}
			if len(slots) == 0 {
				slots = nil
			}
			if err := Reorder(types, slots); err != nil {
				t.Fatalf("Reorder: %v", err)
			}
			if !reflect.DeepEqual(slots, tt.want) {
				t.Errorf("slots = %v, want %v", slots, tt.want)
			}
		})
	}
}

func TestReorder_LengthMismatch(t *testing.T) {
	err := Reorder([]PictureCodingType{pI, pP}, []BufferHandle{0})
	if err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestReorder_StableWithoutLateB(t *testing.T) {
	// No B picture follows a non-B picture, so nothing may move.
	inputs := [][]PictureCodingType{
		{pI, pP, pP, pP},
		{pB, pI, pP, pP},
		{pB, pB, pI, pP},
		{pI},
	}

	for _, in := range inputs {
		types := append([]PictureCodingType(nil), in...)
		slots := []BufferHandle{10, 11, 12, 13}[:len(in)]
		slots = append([]BufferHandle(nil), slots...)
		want := append([]BufferHandle(nil), slots...)

		for pass := 0; pass < 2; pass++ {
			if err := Reorder(types, slots); err != nil {
				t.Fatalf("Reorder: %v", err)
			}
			if !reflect.DeepEqual(slots, want) {
				t.Errorf("%v pass %d: slots = %v, want %v", in, pass, slots, want)
			}
			if !reflect.DeepEqual(types, in) {
				t.Errorf("%v pass %d: types = %v", in, pass, types)
			}
		}
	}
}

func TestDisplayOrder(t *testing.T) {
	types := []PictureCodingType{pI, pP, pB, pP}
	got := DisplayOrder(types)
	if want := []int{0, 2, 1, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("DisplayOrder = %v, want %v", got, want)
	}
	if want := []PictureCodingType{pI, pP, pB, pP}; !reflect.DeepEqual(types, want) {
		t.Errorf("DisplayOrder modified its input: %v", types)
	}
}
