package mpegdec

import (
	"testing"
)

// BenchmarkDecoder measures the per-picture driver overhead on a NullDevice.
func BenchmarkDecoder(b *testing.B) {
	b.Run("DecodeNext", func(b *testing.B) {
		d := NewDecoder(NewNullDevice(), FromStream(newTestStream(pI, pP, pB, pP)), WithLogger(discardLogger()))
		if err := d.Init(false); err != nil {
			b.Fatal(err)
		}
		defer d.Close()

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := d.DecodeNext(); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("InitDecodeWindowClose", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			d := NewDecoder(NewNullDevice(), FromStream(newTestStream(pI, pP, pB, pP)), WithLogger(discardLogger()))
			if err := d.Init(false); err != nil {
				b.Fatal(err)
			}
			if _, err := d.DecodeWindowAndReorder(); err != nil {
				b.Fatal(err)
			}
			d.Close()
		}
	})
}

func BenchmarkReorder(b *testing.B) {
	src := []PictureCodingType{pI, pB, pB, pP, pB, pB, pP, pB, pB, pP, pB, pB}
	types := make([]PictureCodingType, len(src))
	slots := make([]BufferHandle, len(src))

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		copy(types, src)
		for j := range slots {
			slots[j] = BufferHandle(j)
		}
		if err := Reorder(types, slots); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFindPictureHeader(b *testing.B) {
	data := append([]byte{0x00, 0x00, 0x01, 0xB3, 0x2D, 0x02, 0x40, 0x33}, make([]byte, 128)...)
	data = AppendPictureHeader(data, PictureHeader{TemporalReference: 2, CodingType: PicturePredicted})

	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		if _, ok := FindPictureHeader(data); !ok {
			b.Fatal("header not found")
		}
	}
}
