package sharpness

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"testing"

	"github.com/anthonynsimon/bild/blur"
)

// noiseGrid fills a grid with reproducible random samples
func noiseGrid(width, height int, seed int64) Grid {
	rng := rand.New(rand.NewSource(seed))
	grid := NewGrid(width, height, 0)
	for y := range grid {
		for x := range grid[y] {
			grid[y][x] = uint8(rng.Intn(256))
		}
	}
	return grid
}

func gridToGray(g Grid) *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, g.Width(), g.Height()))
	for y, row := range g {
		for x, v := range row {
			gray.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return gray
}

func TestCompute_FlatImage(t *testing.T) {
	img := NewGrid(12, 12, 50)

	score, err := Compute(img, []image.Point{{X: 6, Y: 6}}, 8)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if score != 0 {
		t.Errorf("Expected 0 for flat image, got %f", score)
	}
}

func TestCompute_FlatImageAnyPlacement(t *testing.T) {
	img := NewGrid(30, 20, 200)
	eyes := []image.Point{{X: 0, Y: 0}, {X: 29, Y: 19}, {X: -40, Y: 5}, {X: 15, Y: 400}}

	for _, window := range []int{8, 9, 15, 20} {
		score, err := Compute(img, eyes, window)
		if err != nil {
			t.Fatalf("window %d: unexpected error: %v", window, err)
		}
		if score != 0 {
			t.Errorf("window %d: expected 0, got %f", window, score)
		}
	}
}

func TestCompute_SingleBrightPixel(t *testing.T) {
	img := NewGrid(20, 20, 0)
	img[10][10] = 255
	eyes := []image.Point{{X: 10, Y: 10}}

	first, err := Compute(img, eyes, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := Compute(img, eyes, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// One response of -1020, four of 255, the rest of the 8x8 window zero.
	expected := (1020.0*1020.0 + 4*255.0*255.0) / 64.0
	if first != expected {
		t.Errorf("Expected %f, got %f", expected, first)
	}
	if math.Float64bits(first) != math.Float64bits(second) {
		t.Errorf("Expected bit-identical results, got %v and %v", first, second)
	}
}

func TestCompute_Preconditions(t *testing.T) {
	ragged := NewGrid(10, 10, 0)
	ragged[4] = ragged[4][:9]

	tests := []struct {
		name    string
		img     Grid
		eyes    []image.Point
		window  int
		wantErr error
	}{
		{"window too small", NewGrid(20, 20, 0), []image.Point{{X: 5, Y: 5}}, 7, ErrWindowTooSmall},
		{"negative window", NewGrid(20, 20, 0), []image.Point{{X: 5, Y: 5}}, -10, ErrWindowTooSmall},
		{"image narrower than window", NewGrid(9, 20, 0), []image.Point{{X: 5, Y: 5}}, 10, ErrImageTooSmall},
		{"image shorter than window", NewGrid(20, 9, 0), []image.Point{{X: 5, Y: 5}}, 10, ErrImageTooSmall},
		{"empty image", Grid{}, []image.Point{{X: 0, Y: 0}}, 8, ErrImageTooSmall},
		{"ragged rows", ragged, []image.Point{{X: 5, Y: 5}}, 8, ErrRaggedImage},
		{"no coordinates", NewGrid(20, 20, 0), nil, 8, ErrNoCoordinates},
		{"window checked before image", NewGrid(4, 4, 0), nil, 7, ErrWindowTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := Compute(tt.img, tt.eyes, tt.window)
			if err == nil {
				t.Fatalf("Expected error, got score %f", score)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("Expected error to wrap ErrInvalidParameter, got %v", err)
			}
			if score != 0 {
				t.Errorf("Expected zero score alongside error, got %f", score)
			}
		})
	}
}

func TestCompute_FlatAndTexturedEyes(t *testing.T) {
	// Left half flat, right half noise.
	img := NewGrid(40, 20, 90)
	noise := noiseGrid(20, 20, 7)
	for y := range img {
		copy(img[y][20:], noise[y])
	}

	flat := image.Point{X: 9, Y: 10}
	textured := image.Point{X: 30, Y: 10}

	v, err := Compute(img, []image.Point{textured}, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v <= 0 {
		t.Fatalf("Expected positive variance for textured region, got %f", v)
	}

	flatOnly, err := Compute(img, []image.Point{flat}, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if flatOnly != 0 {
		t.Fatalf("Expected 0 for flat region, got %f", flatOnly)
	}

	both, err := Compute(img, []image.Point{flat, textured}, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if both != v/2 {
		t.Errorf("Expected %f, got %f", v/2, both)
	}
}

func TestCompute_OrderIndependent(t *testing.T) {
	img := noiseGrid(64, 48, 42)
	eyes := []image.Point{{X: 10, Y: 10}, {X: 50, Y: 30}, {X: 32, Y: 24}, {X: 0, Y: 47}}
	reversed := []image.Point{eyes[3], eyes[2], eyes[1], eyes[0]}

	a, err := Compute(img, eyes, 16)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := Compute(img, reversed, 16)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(a-b) > 1e-9*math.Max(a, 1) {
		t.Errorf("Expected order-independent result, got %f and %f", a, b)
	}
}

func TestCompute_DefaultWindow(t *testing.T) {
	img := noiseGrid(120, 100, 3)
	eyes := []image.Point{{X: 60, Y: 50}}

	explicit, err := Compute(img, eyes, DefaultWindowSize)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	implicit, err := ComputeDefault(img, eyes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if explicit != implicit {
		t.Errorf("Expected %f, got %f", explicit, implicit)
	}

	if _, err := ComputeDefault(noiseGrid(99, 100, 3), eyes); !errors.Is(err, ErrImageTooSmall) {
		t.Errorf("Expected ErrImageTooSmall for 99px wide image, got %v", err)
	}
}

func TestWindow_Translation(t *testing.T) {
	tests := []struct {
		name   string
		p      image.Point
		w, h   int
		window int
		want   image.Rectangle
	}{
		{"interior unchanged", image.Point{X: 10, Y: 10}, 20, 20, 10, image.Rect(6, 6, 14, 14)},
		{"top-left corner", image.Point{X: 0, Y: 0}, 8, 8, 8, image.Rect(1, 1, 7, 7)},
		{"bottom-right corner", image.Point{X: 7, Y: 7}, 8, 8, 8, image.Rect(1, 1, 7, 7)},
		{"top-right corner", image.Point{X: 7, Y: 0}, 8, 8, 8, image.Rect(1, 1, 7, 7)},
		{"bottom-left corner", image.Point{X: 0, Y: 7}, 8, 8, 8, image.Rect(1, 1, 7, 7)},
		{"low edge touching zero", image.Point{X: 4, Y: 4}, 20, 20, 10, image.Rect(1, 1, 9, 9)},
		{"high edge touching dim", image.Point{X: 16, Y: 16}, 20, 20, 10, image.Rect(11, 11, 19, 19)},
		{"far outside", image.Point{X: -50, Y: 500}, 30, 40, 10, image.Rect(1, 31, 9, 39)},
		{"odd window rounds down", image.Point{X: 10, Y: 10}, 20, 20, 11, image.Rect(6, 6, 14, 14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Window(tt.p, tt.w, tt.h, tt.window)
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompute_CornersMatchTranslatedWindow(t *testing.T) {
	img := noiseGrid(8, 8, 11)
	expected := WindowVariance(img, image.Rect(1, 1, 7, 7))

	corners := []image.Point{{X: 0, Y: 0}, {X: 7, Y: 0}, {X: 0, Y: 7}, {X: 7, Y: 7}}
	for _, c := range corners {
		got, err := Compute(img, []image.Point{c}, 8)
		if err != nil {
			t.Fatalf("corner %v: unexpected error: %v", c, err)
		}
		if got != expected {
			t.Errorf("corner %v: expected %f, got %f", c, expected, got)
		}
	}
}

func TestCompute_EveryPlacementStaysInBounds(t *testing.T) {
	sizes := []struct{ w, h, window int }{
		{16, 12, 12},
		{9, 9, 9},
		{8, 30, 8},
		{25, 25, 10},
	}

	for _, s := range sizes {
		img := noiseGrid(s.w, s.h, int64(s.w*s.h))
		for y := -3; y <= s.h+3; y++ {
			for x := -3; x <= s.w+3; x++ {
				p := image.Point{X: x, Y: y}
				r := Window(p, s.w, s.h, s.window)
				if r.Min.X < 1 || r.Min.Y < 1 || r.Max.X > s.w-1 || r.Max.Y > s.h-1 {
					t.Fatalf("%dx%d window %d at %v: window %v leaves no margin", s.w, s.h, s.window, p, r)
				}

				score, err := Compute(img, []image.Point{p}, s.window)
				if err != nil {
					t.Fatalf("Unexpected error at %v: %v", p, err)
				}
				if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
					t.Fatalf("Expected finite non-negative score at %v, got %f", p, score)
				}
			}
		}
	}
}

func TestVariances_PerEye(t *testing.T) {
	img := NewGrid(40, 20, 0)
	img[10][30] = 255
	eyes := []image.Point{{X: 9, Y: 10}, {X: 30, Y: 10}}

	variances, err := Variances(img, eyes, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(variances) != 2 {
		t.Fatalf("Expected 2 variances, got %d", len(variances))
	}
	if variances[0] != 0 {
		t.Errorf("Expected 0 for dark eye, got %f", variances[0])
	}
	if variances[1] <= 0 {
		t.Errorf("Expected positive variance for bright eye, got %f", variances[1])
	}
}

func TestCompute_BlurLowersScore(t *testing.T) {
	sharp := noiseGrid(64, 64, 99)
	eyes := []image.Point{{X: 20, Y: 32}, {X: 44, Y: 32}}

	sharpScore, err := Compute(sharp, eyes, 24)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	prev := sharpScore
	for _, radius := range []float64{1, 2, 4} {
		blurred := blur.Gaussian(gridToGray(sharp), radius)
		gray := image.NewGray(blurred.Bounds())
		draw.Draw(gray, gray.Bounds(), blurred, blurred.Bounds().Min, draw.Src)

		score, err := Compute(FromGray(gray), eyes, 24)
		if err != nil {
			t.Fatalf("radius %.0f: unexpected error: %v", radius, err)
		}
		if score >= prev {
			t.Errorf("radius %.0f: expected score below %f, got %f", radius, prev, score)
		}
		prev = score
	}
}

func TestFromGray_SubImage(t *testing.T) {
	full := gridToGray(noiseGrid(30, 30, 5))
	sub := full.SubImage(image.Rect(5, 7, 25, 27)).(*image.Gray)

	grid := FromGray(sub)
	if grid.Width() != 20 || grid.Height() != 20 {
		t.Fatalf("Expected 20x20 grid, got %dx%d", grid.Width(), grid.Height())
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if grid[y][x] != full.GrayAt(x+5, y+7).Y {
				t.Fatalf("Sample mismatch at (%d,%d)", x, y)
			}
		}
	}
}
