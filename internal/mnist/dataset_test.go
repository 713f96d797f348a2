package mnist

import (
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeIDXFiles writes a small IDX image/label pair into dir using the
// training-set filenames.
func writeIDXFiles(t *testing.T, dir string, numSamples int) {
	t.Helper()

	imgPath := filepath.Join(dir, "train-images-idx3-ubyte")
	f, err := os.Create(imgPath)
	require.NoError(t, err)

	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(2051)))
	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(numSamples)))
	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(28)))
	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(28)))
	for i := 0; i < numSamples; i++ {
		pixels := make([]byte, 784)
		for j := range pixels {
			pixels[j] = byte(i) // each image filled with its own index
		}
		_, err := f.Write(pixels)
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	lblPath := filepath.Join(dir, "train-labels-idx1-ubyte")
	f, err = os.Create(lblPath)
	require.NoError(t, err)

	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(2049)))
	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(numSamples)))
	for i := 0; i < numSamples; i++ {
		_, err := f.Write([]byte{byte(i % 10)})
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeIDXFiles(t, dir, 5)

	ds, err := Load(dir, true, 0)
	require.NoError(t, err)

	assert.Equal(t, 5, ds.NumSamples())
	assert.Len(t, ds.Images[0], ImageSize)

	// Pixels normalized to [0, 1].
	assert.Equal(t, float32(0), ds.Images[0][0])
	assert.InDelta(t, 3.0/255.0, ds.Images[3][0], 1e-6)

	assert.Equal(t, int32(0), ds.Labels[0])
	assert.Equal(t, int32(4), ds.Labels[4])
}

func TestLoadMaxSamples(t *testing.T) {
	dir := t.TempDir()
	writeIDXFiles(t, dir, 10)

	ds, err := Load(dir, true, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.NumSamples())
}

func TestLoadMissingFiles(t *testing.T) {
	_, err := Load(t.TempDir(), true, 0)
	assert.Error(t, err)
}

func TestLoadBadMagic(t *testing.T) {
	dir := t.TempDir()
	writeIDXFiles(t, dir, 2)

	// Corrupt the image magic.
	imgPath := filepath.Join(dir, "train-images-idx3-ubyte")
	data, err := os.ReadFile(imgPath)
	require.NoError(t, err)
	data[3] = 0xFF
	require.NoError(t, os.WriteFile(imgPath, data, 0o600))

	_, err = Load(dir, true, 0)
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	ds := Synthetic(100)
	train, val := ds.Split(0.2)

	assert.Equal(t, 80, train.NumSamples())
	assert.Equal(t, 20, val.NumSamples())
	assert.Len(t, train.Labels, 80)
	assert.Len(t, val.Labels, 20)
}

func TestBatches(t *testing.T) {
	ds := Synthetic(10)

	batches, err := ds.Batches(4, nil)
	require.NoError(t, err)

	require.Len(t, batches, 3)
	assert.Equal(t, 4, batches[0].Size)
	assert.Equal(t, 4, batches[1].Size)
	assert.Equal(t, 2, batches[2].Size) // remainder batch

	assert.Equal(t, []int{4, ImageSize}, []int(batches[0].Images.Shape()))

	// Without shuffling, order is preserved.
	assert.Equal(t, []int32{0, 1, 2, 3}, batches[0].Labels)
}

func TestBatchesInvalidSize(t *testing.T) {
	ds := Synthetic(10)
	_, err := ds.Batches(0, nil)
	assert.Error(t, err)
}

func TestBatchesShuffleDeterministic(t *testing.T) {
	ds := Synthetic(50)

	a, err := ds.Batches(8, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	b, err := ds.Batches(8, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	for i := range a {
		assert.Equal(t, a[i].Labels, b[i].Labels)
	}

	// A different seed should give a different order somewhere.
	c, err := ds.Batches(8, rand.New(rand.NewSource(6)))
	require.NoError(t, err)

	different := false
	for i := range a {
		for j := range a[i].Labels {
			if a[i].Labels[j] != c[i].Labels[j] {
				different = true
			}
		}
	}
	assert.True(t, different, "different seeds produced identical order")
}

func TestBatchesShuffleKeepsPairs(t *testing.T) {
	ds := Synthetic(30)

	batches, err := ds.Batches(30, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, batches, 1)

	// Shuffling must keep each image with its label. Synthetic images
	// carry a band whose position encodes the class.
	batch := batches[0]
	data := batch.Images.Data()
	for i := 0; i < batch.Size; i++ {
		img := data[i*ImageSize : (i+1)*ImageSize]
		startRow := int(batch.Labels[i]) * 2
		if img[startRow*28+5] != 0.8 {
			t.Errorf("sample %d: image does not match label %d", i, batch.Labels[i])
		}
	}
}

func TestSynthetic(t *testing.T) {
	ds := Synthetic(25)

	assert.Equal(t, 25, ds.NumSamples())
	for i, label := range ds.Labels {
		assert.Equal(t, int32(i%NumClasses), label)
	}
	for _, img := range ds.Images {
		assert.Len(t, img, ImageSize)
	}
}
