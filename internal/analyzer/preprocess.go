package analyzer

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// downscale proportionally shrinks img so that its long edge is at most
// longEdge pixels. It returns the image to analyse with its origin at (0,0)
// and the per-axis scale factors; images already small enough are returned
// unchanged with factors of 1.
func downscale(img image.Image, longEdge int) (image.Image, float64, float64) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if longEdge <= 0 || (width <= longEdge && height <= longEdge) {
		return img, 1, 1
	}

	var newWidth, newHeight int
	if height >= width {
		newHeight = longEdge
		newWidth = int(float64(longEdge) / (float64(height) / float64(width)))
	} else {
		newWidth = longEdge
		newHeight = int(float64(longEdge) / (float64(width) / float64(height)))
	}
	newWidth = max(newWidth, 1)
	newHeight = max(newHeight, 1)

	resized := imaging.Resize(img, newWidth, newHeight, imaging.Linear)
	return resized, float64(newWidth) / float64(width), float64(newHeight) / float64(height)
}

// scaleEyes maps source eye coordinates into the analysed image
func scaleEyes(eyes []image.Point, sx, sy float64) []image.Point {
	scaled := make([]image.Point, len(eyes))
	for i, eye := range eyes {
		scaled[i] = image.Point{
			X: int(math.Round(float64(eye.X) * sx)),
			Y: int(math.Round(float64(eye.Y) * sy)),
		}
	}
	return scaled
}
