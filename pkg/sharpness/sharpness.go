// Package sharpness scores focus quality at known eye positions.
//
// Each eye gets a square window, the window is convolved with a 3x3 discrete
// Laplacian and the population variance of the responses is taken. The score
// of an image is the mean of those per-eye variances: high values indicate
// sharp edges and texture, values near zero indicate a flat or blurred region.
//
// # Window placement
//
// For a window size w the half-window is w/2 - 1, which reserves the one
// sample margin the convolution needs on every side. A window that would run
// off the image is slid back inside along the offending axis, it is never
// shrunk, so every eye is scored over the same number of samples.
//
// # Thread Safety
//
// The package holds no state. All functions only read the supplied Grid and
// may be called concurrently on the same or different images.
package sharpness

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultWindowSize is the window side used by ComputeDefault
	DefaultWindowSize = 100

	// MinWindowSize is the smallest accepted window side
	MinWindowSize = 8
)

// laplaceKernel is the 4-neighbour discrete Laplacian
var laplaceKernel = [3][3]int{
	{0, 1, 0},
	{1, -4, 1},
	{0, 1, 0},
}

// Compute returns the mean windowed Laplacian variance over all eyes.
//
// Coordinates outside the image are not rejected; their windows are
// translated into the image. The returned error wraps ErrInvalidParameter
// when windowSize is below MinWindowSize, the image is smaller than the
// window on either axis, the rows are ragged, or eyes is empty.
func Compute(img Grid, eyes []image.Point, windowSize int) (float64, error) {
	variances, err := Variances(img, eyes, windowSize)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, v := range variances {
		total += v
	}
	return total / float64(len(variances)), nil
}

// ComputeDefault is Compute with DefaultWindowSize
func ComputeDefault(img Grid, eyes []image.Point) (float64, error) {
	return Compute(img, eyes, DefaultWindowSize)
}

// Variances returns the Laplacian variance of each eye's window, in the order
// of eyes. It validates its inputs exactly like Compute.
func Variances(img Grid, eyes []image.Point, windowSize int) ([]float64, error) {
	if err := validate(img, eyes, windowSize); err != nil {
		return nil, err
	}

	width, height := img.Width(), img.Height()
	variances := make([]float64, len(eyes))
	for i, eye := range eyes {
		variances[i] = WindowVariance(img, Window(eye, width, height, windowSize))
	}
	return variances, nil
}

// Window returns the half-open region convolved for an eye at p on a
// width x height image. The caller is expected to have checked that both
// dimensions are at least windowSize.
func Window(p image.Point, width, height, windowSize int) image.Rectangle {
	half := windowSize/2 - 1
	top, bottom := slide(p.Y-half, p.Y+half, height)
	left, right := slide(p.X-half, p.X+half, width)
	return image.Rectangle{
		Min: image.Point{X: left, Y: top},
		Max: image.Point{X: right, Y: bottom},
	}
}

// slide translates [lo, hi) along one axis so that a one sample margin stays
// inside [0, dim) on both ends. Only one end is corrected.
func slide(lo, hi, dim int) (int, int) {
	if lo < 1 {
		shift := lo - 1
		return lo - shift, hi - shift
	} else if hi > dim-1 {
		shift := hi - (dim - 1)
		return lo - shift, hi - shift
	}
	return lo, hi
}

// WindowVariance convolves every sample in r with the Laplacian and returns
// the population variance of the responses. r must lie at least one sample
// inside img on every side.
func WindowVariance(img Grid, r image.Rectangle) float64 {
	if r.Empty() {
		return 0
	}

	responses := make([]float64, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			responses = append(responses, float64(laplacianAt(img, x, y)))
		}
	}
	return stat.PopVariance(responses, nil)
}

// laplacianAt computes the kernel's weighted sum over the 3x3 neighbourhood
func laplacianAt(img Grid, x, y int) int {
	var sum int
	for ky := -1; ky <= 1; ky++ {
		row := img[y+ky]
		for kx := -1; kx <= 1; kx++ {
			sum += int(row[x+kx]) * laplaceKernel[ky+1][kx+1]
		}
	}
	return sum
}

func validate(img Grid, eyes []image.Point, windowSize int) error {
	if windowSize < MinWindowSize {
		return fmt.Errorf("%w (got %d, minimum %d)", ErrWindowTooSmall, windowSize, MinWindowSize)
	}

	width, height := img.Width(), img.Height()
	if width < windowSize || height < windowSize {
		return fmt.Errorf("%w (image %dx%d, window %d)", ErrImageTooSmall, width, height, windowSize)
	}
	for i, row := range img {
		if len(row) != width {
			return fmt.Errorf("%w (row %d has %d samples, want %d)", ErrRaggedImage, i, len(row), width)
		}
	}

	if len(eyes) == 0 {
		return ErrNoCoordinates
	}
	return nil
}
