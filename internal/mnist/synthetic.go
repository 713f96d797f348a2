package mnist

// Synthetic creates a small synthetic digit dataset for tests and demos.
//
// Each class gets a distinct bright horizontal band, cycled over n
// samples. The patterns are trivially separable, which is the point:
// they let the full train/checkpoint pipeline run without the real
// dataset on disk.
func Synthetic(n int) *Dataset {
	images := make([][]float32, n)
	labels := make([]int32, n)

	for i := 0; i < n; i++ {
		class := i % NumClasses
		labels[i] = int32(class)

		img := make([]float32, ImageSize)
		startRow := class * 2
		for row := startRow; row < startRow+8 && row < 28; row++ {
			for col := 5; col < 23; col++ {
				img[row*28+col] = 0.8
			}
		}
		images[i] = img
	}

	return &Dataset{Images: images, Labels: labels}
}
