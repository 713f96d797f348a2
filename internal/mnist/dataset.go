package mnist

import (
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/percept-ml/percept/internal/tensor"
)

// Image dimensions of the MNIST dataset.
const (
	ImageSize  = 784 // 28x28 flattened
	NumClasses = 10
)

// Dataset holds MNIST images and labels.
type Dataset struct {
	Images [][]float32 // [num_samples][784], normalized to [0, 1]
	Labels []int32     // [num_samples], 0-9
}

// Load reads the official MNIST IDX files from dataDir.
//
// Expected files in dataDir:
//   - train-images-idx3-ubyte (or t10k-images-idx3-ubyte for test)
//   - train-labels-idx1-ubyte (or t10k-labels-idx1-ubyte for test)
//
// Pixels are normalized from 0-255 to [0, 1]. maxSamples limits the
// number of samples loaded (0 = load all).
func Load(dataDir string, train bool, maxSamples int) (*Dataset, error) {
	var imageFile, labelFile string
	if train {
		imageFile = filepath.Join(dataDir, "train-images-idx3-ubyte")
		labelFile = filepath.Join(dataDir, "train-labels-idx1-ubyte")
	} else {
		imageFile = filepath.Join(dataDir, "t10k-images-idx3-ubyte")
		labelFile = filepath.Join(dataDir, "t10k-labels-idx1-ubyte")
	}

	imagesRaw, err := readIDXImages(imageFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}

	labelsRaw, err := readIDXLabels(labelFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}

	if len(imagesRaw) != len(labelsRaw) {
		return nil, fmt.Errorf("image count (%d) != label count (%d)", len(imagesRaw), len(labelsRaw))
	}

	numSamples := len(imagesRaw)
	if maxSamples > 0 && numSamples > maxSamples {
		numSamples = maxSamples
	}

	images := make([][]float32, numSamples)
	labels := make([]int32, numSamples)

	for i := 0; i < numSamples; i++ {
		if len(imagesRaw[i]) != ImageSize {
			return nil, fmt.Errorf("image %d has %d pixels, want %d", i, len(imagesRaw[i]), ImageSize)
		}
		images[i] = make([]float32, ImageSize)
		for j := 0; j < ImageSize; j++ {
			images[i][j] = float32(imagesRaw[i][j]) / 255.0
		}
		labels[i] = int32(labelsRaw[i])
	}

	return &Dataset{Images: images, Labels: labels}, nil
}

// NumSamples returns the total number of samples in the dataset.
func (d *Dataset) NumSamples() int {
	return len(d.Images)
}

// Split splits the dataset into train and validation sets.
//
// validationRatio is the fraction of data held out for validation
// (e.g., 0.2 for 20%).
func (d *Dataset) Split(validationRatio float32) (*Dataset, *Dataset) {
	numSamples := d.NumSamples()
	splitIdx := int(float32(numSamples) * (1.0 - validationRatio))

	return &Dataset{
			Images: d.Images[:splitIdx],
			Labels: d.Labels[:splitIdx],
		}, &Dataset{
			Images: d.Images[splitIdx:],
			Labels: d.Labels[splitIdx:],
		}
}

// Batch is a mini-batch for training: a [batch, 784] image tensor and
// the matching labels.
type Batch struct {
	Images *tensor.Tensor
	Labels []int32
	Size   int
}

// Batches splits the dataset into mini-batches.
//
// When rng is non-nil, samples are shuffled before batching. The last
// batch may be smaller if the data doesn't divide evenly.
func (d *Dataset) Batches(batchSize int, rng *rand.Rand) ([]*Batch, error) {
	numSamples := d.NumSamples()
	if numSamples != len(d.Labels) {
		return nil, fmt.Errorf("images and labels length mismatch")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("invalid batch size: %d", batchSize)
	}

	indices := make([]int, numSamples)
	for i := range indices {
		indices[i] = i
	}
	if rng != nil {
		rng.Shuffle(numSamples, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	numBatches := (numSamples + batchSize - 1) / batchSize
	batches := make([]*Batch, 0, numBatches)

	for start := 0; start < numSamples; start += batchSize {
		end := start + batchSize
		if end > numSamples {
			end = numSamples
		}
		size := end - start

		raw, err := tensor.NewRaw(tensor.Shape{size, ImageSize}, tensor.Float32)
		if err != nil {
			return nil, fmt.Errorf("failed to create batch tensor: %w", err)
		}

		data := raw.AsFloat32()
		labels := make([]int32, size)
		for i := start; i < end; i++ {
			idx := indices[i]
			copy(data[(i-start)*ImageSize:(i-start+1)*ImageSize], d.Images[idx])
			labels[i-start] = d.Labels[idx]
		}

		batches = append(batches, &Batch{
			Images: tensor.New(raw),
			Labels: labels,
			Size:   size,
		})
	}

	return batches, nil
}
