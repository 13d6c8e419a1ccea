package analyzer

import (
	"image"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// metricsCalculator implements MetricsCalculator with Gonum statistics
type metricsCalculator struct {
	slicePool sync.Pool
}

// NewMetricsCalculator creates a new metrics calculator using Gonum
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{
		slicePool: sync.Pool{
			New: func() interface{} {
				s := make([]float64, 0, 1024)
				return &s
			},
		},
	}
}

// CalculateLaplacianVariance computes the population variance of the 4-neighbour
// Laplacian over every interior pixel of the frame
func (mc *metricsCalculator) CalculateLaplacianVariance(gray *image.Gray) float64 {
	return mc.interiorVariance(gray, func(x, y int) float64 {
		center := int(gray.GrayAt(x, y).Y)
		top := int(gray.GrayAt(x, y-1).Y)
		bottom := int(gray.GrayAt(x, y+1).Y)
		left := int(gray.GrayAt(x-1, y).Y)
		right := int(gray.GrayAt(x+1, y).Y)
		return float64(top + bottom + left + right - 4*center)
	})
}

// CalculateTenengradVariance computes the population variance of the Sobel
// gradient magnitude over every interior pixel of the frame
func (mc *metricsCalculator) CalculateTenengradVariance(gray *image.Gray) float64 {
	return mc.interiorVariance(gray, func(x, y int) float64 {
		gx := sobelX(gray, x, y)
		gy := sobelY(gray, x, y)
		return math.Sqrt(float64(gx*gx + gy*gy))
	})
}

// interiorVariance applies response to each pixel that has a full 3x3
// neighbourhood and returns the population variance of the results
func (mc *metricsCalculator) interiorVariance(gray *image.Gray, response func(x, y int) float64) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	// Get reusable slice from pool
	buf := mc.slicePool.Get().(*[]float64)
	defer mc.slicePool.Put(buf)

	data := (*buf)[:0]
	if n := (width - 2) * (height - 2); cap(data) < n {
		data = make([]float64, 0, n)
	}

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			data = append(data, response(x, y))
		}
	}
	*buf = data[:0]

	return stat.PopVariance(data, nil)
}

// CalculateBrightness computes average brightness with parallel processing
func (mc *metricsCalculator) CalculateBrightness(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Handle empty images
	if width == 0 || height == 0 {
		return 0
	}

	if width*height < 100000 {
		return sumRows(gray, bounds.Min.Y, bounds.Max.Y) / float64(width*height)
	}

	numWorkers := min(runtime.NumCPU(), height)
	rowsPerWorker := (height + numWorkers - 1) / numWorkers // ceil division

	results := make(chan float64, numWorkers)
	var wg sync.WaitGroup

	// Process image in horizontal strips for better cache locality
	for startY := bounds.Min.Y; startY < bounds.Max.Y; startY += rowsPerWorker {
		endY := min(startY+rowsPerWorker, bounds.Max.Y)
		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()
			results <- sumRows(gray, startY, endY)
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var total float64
	for partial := range results {
		total += partial
	}

	return total / float64(width*height)
}

// sumRows adds every pixel value in rows [startY, endY)
func sumRows(gray *image.Gray, startY, endY int) float64 {
	bounds := gray.Bounds()
	var total uint64
	for y := startY; y < endY; y++ {
		off := gray.PixOffset(bounds.Min.X, y)
		for _, v := range gray.Pix[off : off+bounds.Dx()] {
			total += uint64(v)
		}
	}
	return float64(total)
}

// sobelX computes Sobel X gradient
func sobelX(gray *image.Gray, x, y int) int {
	return -1*int(gray.GrayAt(x-1, y-1).Y) + 1*int(gray.GrayAt(x+1, y-1).Y) +
		-2*int(gray.GrayAt(x-1, y).Y) + 2*int(gray.GrayAt(x+1, y).Y) +
		-1*int(gray.GrayAt(x-1, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)
}

// sobelY computes Sobel Y gradient
func sobelY(gray *image.Gray, x, y int) int {
	return -1*int(gray.GrayAt(x-1, y-1).Y) - 2*int(gray.GrayAt(x, y-1).Y) - 1*int(gray.GrayAt(x+1, y-1).Y) +
		1*int(gray.GrayAt(x-1, y+1).Y) + 2*int(gray.GrayAt(x, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)
}
