package sharpness

import "image"

// Grid is a row-major single-channel image: Grid[y][x] is the sample at
// column x of row y. All rows must have the same length.
type Grid [][]uint8

// Width returns the length of the first row, or 0 for an empty grid
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Height returns the number of rows
func (g Grid) Height() int {
	return len(g)
}

// FromGray returns a Grid backed by gray's pixel buffer. Row 0 of the Grid
// is gray.Bounds().Min.Y, so grid coordinates are relative to the image's
// top-left corner. The Grid aliases gray and must not outlive changes to it.
func FromGray(gray *image.Gray) Grid {
	bounds := gray.Bounds()
	width := bounds.Dx()

	grid := make(Grid, bounds.Dy())
	for y := range grid {
		off := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		grid[y] = gray.Pix[off : off+width : off+width]
	}
	return grid
}

// NewGrid allocates a width x height grid filled with value
func NewGrid(width, height int, value uint8) Grid {
	grid := make(Grid, height)
	for y := range grid {
		row := make([]uint8, width)
		if value != 0 {
			for x := range row {
				row[x] = value
			}
		}
		grid[y] = row
	}
	return grid
}
