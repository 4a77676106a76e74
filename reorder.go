package mpegdec

import "fmt"

// Reorder moves decode-ordered pictures into display order in place.
//
// Scanning from index 1, every B picture is swapped with its left neighbour
// and the same index is examined again; any other picture advances the scan.
// types and slots are permuted together. A B picture at index 0 stays put,
// and two adjacent B pictures keep their relative order.
func Reorder(types []PictureCodingType, slots []BufferHandle) error {
	if len(types) != len(slots) {
		return fmt.Errorf("reorder: %d types for %d slots", len(types), len(slots))
	}
	reorder(types, func(i, j int) {
		slots[i], slots[j] = slots[j], slots[i]
	})
	return nil
}

// DisplayOrder returns, for decode-ordered coding types, the decode indices
// in display order. types is not modified.
func DisplayOrder(types []PictureCodingType) []int {
	order := make([]int, len(types))
	for i := range order {
		order[i] = i
	}
	scratch := append([]PictureCodingType(nil), types...)
	reorder(scratch, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

func reorder(types []PictureCodingType, swap func(i, j int)) {
	for j := 1; j < len(types); {
		if types[j] != PictureBidirectional || types[j-1] == PictureBidirectional {
			j++
			continue
		}
		types[j-1], types[j] = types[j], types[j-1]
		swap(j-1, j)
	}
}
