package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels(t *testing.T) {
	tests := []struct {
		name  string
		vocab Vocabulary
		count int
		first string
		last  string
	}{
		{"coco21", COCO21, 21, "background", "cow"},
		{"ade150", ADE150, 150, "wall", "flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := Labels(tt.vocab)
			require.Len(t, labels, tt.count)
			assert.Equal(t, tt.first, labels[0])
			assert.Equal(t, tt.last, labels[len(labels)-1])
			assert.Equal(t, tt.count, NumClasses(tt.vocab))
		})
	}
}

func TestLabelsUnknownVocabulary(t *testing.T) {
	assert.Nil(t, Labels(Vocabulary("pascal")))
	assert.Equal(t, 0, NumClasses(Vocabulary("pascal")))
	assert.Nil(t, Palette(Vocabulary("pascal")))
}

func TestPaletteVOCScheme(t *testing.T) {
	p := Palette(COCO21)
	require.Len(t, p, 21)

	// Known PASCAL VOC colors for the low indices
	assert.Equal(t, [3]uint8{0, 0, 0}, p[0])
	assert.Equal(t, [3]uint8{128, 0, 0}, p[1])
	assert.Equal(t, [3]uint8{0, 128, 0}, p[2])
	assert.Equal(t, [3]uint8{128, 128, 0}, p[3])
	assert.Equal(t, [3]uint8{0, 0, 128}, p[4])
	assert.Equal(t, [3]uint8{64, 0, 0}, p[8])
	assert.Equal(t, [3]uint8{192, 0, 0}, p[9])
}

func TestPaletteADE150(t *testing.T) {
	p := Palette(ADE150)
	require.Len(t, p, 150)

	// Background stays black; every other entry is distinct and non-black.
	assert.Equal(t, [3]uint8{0, 0, 0}, p[0])

	seen := make(map[[3]uint8]int)
	for i := 1; i < len(p); i++ {
		if prev, dup := seen[p[i]]; dup {
			t.Fatalf("palette entries %d and %d collide on %v", prev, i, p[i])
		}
		seen[p[i]] = i
		assert.NotEqual(t, [3]uint8{0, 0, 0}, p[i], "entry %d must not be black", i)
	}
}

func TestPaletteMemoized(t *testing.T) {
	a := Palette(COCO21)
	b := Palette(COCO21)
	require.NotNil(t, a)

	// Same backing array, not a recomputed copy
	assert.Equal(t, &a[0], &b[0])
}

func TestPaletteCoversVocabulary(t *testing.T) {
	for _, v := range []Vocabulary{COCO21, ADE150} {
		assert.Len(t, Palette(v), NumClasses(v), "palette length for %s", v)
	}
}
