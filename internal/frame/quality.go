// Package frame extracts and selects still frames from videos, scoring
// candidates by image quality or by vision-model ranking.
package frame

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/nfnt/resize"
)

// Quality is a composite image quality score in [0, 1].
type Quality struct {
	Sharpness  float64
	Contrast   float64
	Brightness float64
	Score      float64
}

// scoreWidth bounds the pixel count before analysis.
const scoreWidth = 320

// ScoreFile decodes an image file and scores it.
func ScoreFile(path string) (Quality, error) {
	f, err := os.Open(path)
	if err != nil {
		return Quality{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Quality{}, err
	}
	return Score(img), nil
}

// Score rates an image on sharpness, contrast and brightness. Sharpness
// dominates the weighting; a blurry frame is unusable regardless of
// exposure.
func Score(img image.Image) Quality {
	if img.Bounds().Dx() > scoreWidth {
		img = resize.Resize(scoreWidth, 0, img, resize.Bilinear)
	}
	gray := toGray(img)
	w, h := len(gray[0]), len(gray)

	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum += gray[y][x]
		}
	}
	mean := sum / float64(w*h)

	var variance float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := gray[y][x] - mean
			variance += d * d
		}
	}
	variance /= float64(w * h)
	contrast := math.Min(math.Sqrt(variance)/100, 1.0)

	sharpness := math.Min(laplacianVariance(gray)/1000, 1.0)
	brightness := brightnessScore(mean)

	return Quality{
		Sharpness:  sharpness,
		Contrast:   contrast,
		Brightness: brightness,
		Score:      0.5*sharpness + 0.3*contrast + 0.2*brightness,
	}
}

func toGray(img image.Image) [][]float64 {
	b := img.Bounds()
	gray := make([][]float64, b.Dy())
	for y := range gray {
		row := make([]float64, b.Dx())
		for x := range row {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			row[x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 257
		}
		gray[y] = row
	}
	return gray
}

// laplacianVariance measures edge energy with a 4-neighbor Laplacian.
func laplacianVariance(gray [][]float64) float64 {
	h := len(gray)
	w := len(gray[0])
	if h < 3 || w < 3 {
		return 0
	}

	responses := make([]float64, 0, (h-2)*(w-2))
	var sum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := gray[y-1][x] + gray[y+1][x] + gray[y][x-1] + gray[y][x+1] - 4*gray[y][x]
			responses = append(responses, lap)
			sum += lap
		}
	}
	mean := sum / float64(len(responses))

	var variance float64
	for _, r := range responses {
		d := r - mean
		variance += d * d
	}
	return variance / float64(len(responses))
}

// brightnessScore rewards well-exposed frames and penalizes crushed or
// blown-out ones.
func brightnessScore(mean float64) float64 {
	switch {
	case mean >= 100 && mean <= 200:
		return 1.0
	case mean < 50:
		return mean / 50
	case mean > 200:
		return 1.0 - (mean-200)/55
	default:
		return 0.8
	}
}
