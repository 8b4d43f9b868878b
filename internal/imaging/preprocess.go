package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

const (
	// thresholdBlockSize is the side length of the Gaussian-weighted
	// neighborhood used by the adaptive threshold.
	thresholdBlockSize = 11

	// thresholdOffset is subtracted from the local weighted mean before
	// comparison, biasing the cut toward darker-than-surroundings pixels.
	thresholdOffset = 2.0

	// openingRadius selects a 3x3 structuring element for the morphological
	// opening that removes speckle noise.
	openingRadius = 1.0
)

// Binarize converts an image into a binary mask suitable for contour
// extraction.
//
// The image is converted to grayscale, binarized with an adaptive Gaussian
// threshold (11x11 neighborhood, constant offset 2), and cleaned with a 3x3
// morphological opening. The result is inverted relative to the source:
// diagram ink (dark strokes and fills) becomes foreground (255) and the page
// background becomes 0.
//
// Returns:
//   - *image.Gray: A mask with the same width and height as the input, with
//     bounds anchored at (0,0).
//
// The operation is fully deterministic; identical input pixels always produce
// an identical mask.
func Binarize(img image.Image) *image.Gray {
	gray := toGray(imaging.Grayscale(img))
	binary := adaptiveThreshold(gray, thresholdBlockSize, thresholdOffset)
	return open(binary)
}

// toGray flattens a grayscale NRGBA image into a single-channel image.
// All three color channels are equal after imaging.Grayscale, so the red
// channel is taken as the luminance value.
func toGray(img *image.NRGBA) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			out.Pix[y*out.Stride+x] = c.R
		}
	}
	return out
}

// adaptiveThreshold binarizes a grayscale image using a per-pixel threshold.
//
// The threshold for each pixel is the Gaussian-weighted mean of its size x size
// neighborhood minus offset. Pixels at or below the threshold become
// foreground (255); pixels above it become background (0). This is the
// inverted binarization convention: dark ink on a light page ends up as
// foreground.
//
// Border pixels use clamped (replicated) edge values, matching the
// convolution boundary handling used elsewhere in the pipeline.
func adaptiveThreshold(gray *image.Gray, size int, offset float64) *image.Gray {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	kernel := gaussianKernel(size)
	radius := size / 2

	// Separable blur: horizontal pass into tmp, vertical pass into mean.
	tmp := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				px := clamp(x+k, 0, width-1)
				sum += float64(gray.Pix[y*gray.Stride+px]) * kernel[k+radius]
			}
			tmp[y*width+x] = sum
		}
	}

	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var mean float64
			for k := -radius; k <= radius; k++ {
				py := clamp(y+k, 0, height-1)
				mean += tmp[py*width+x] * kernel[k+radius]
			}

			src := float64(gray.Pix[y*gray.Stride+x])
			if src <= mean-offset {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// gaussianKernel builds a normalized 1D Gaussian kernel of the given odd size.
//
// Sigma is derived from the kernel size as 0.3*((size-1)*0.5 - 1) + 0.8,
// which yields sigma = 2.0 for the 11-tap kernel used by Binarize.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	radius := size / 2

	kernel := make([]float64, size)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// open applies a morphological opening (erosion followed by dilation) with a
// 3x3 structuring element, removing foreground specks smaller than the
// element while preserving the shape of larger regions.
func open(mask *image.Gray) *image.Gray {
	opened := effect.Dilate(effect.Erode(mask, openingRadius), openingRadius)

	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if opened.RGBAAt(x, y).R > 127 {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
