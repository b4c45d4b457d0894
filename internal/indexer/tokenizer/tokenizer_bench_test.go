package tokenizer

import (
	"fmt"
	"strings"
	"testing"
)

var sampleNames = map[string]string{
	"short":    "High Hopes",
	"medium":   "Love Me Tender (Remastered 2002 Version) - Live at Madison Square Garden",
	"cyrillic": "Группа крови на рукаве, мой порядковый номер на рукаве",
	"long":     strings.Repeat("The Dark Side of the Moon Medley ", 20),
}

func BenchmarkWords(b *testing.B) {
	for name, text := range sampleNames {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = Words(text)
			}
		})
	}
}

func BenchmarkNGrams(b *testing.B) {
	for name, text := range sampleNames {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = NGrams(text, 1, 5)
			}
		})
	}
}

func BenchmarkNGramsParallel(b *testing.B) {
	text := sampleNames["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = NGrams(text, 1, 5)
		}
	})
}

func BenchmarkNGramsVaryingSize(b *testing.B) {
	base := "love me tender hope high "
	for _, size := range []int{10, 100, 500, 1000} {
		text := strings.Repeat(base, size/len(base)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = NGrams(text, 1, 5)
			}
		})
	}
}
