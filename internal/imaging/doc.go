// Package imaging provides image loading and preprocessing for diagram analysis.
//
// This package implements the first stage of the diagram pipeline: decoding a
// raster image from disk and turning it into a clean binary mask suitable for
// contour extraction. All operations work with standard Go image.Image types
// and use a coordinate system where (0,0) is at the top-left corner, X
// increases rightward, and Y increases downward.
//
// # Supported Formats
//
// The loader registers decoders for PNG, JPEG, GIF, BMP, and TIFF. Decoding
// failures (missing file, truncated data, unsupported format) are reported as
// errors wrapping ErrDecode so callers can distinguish them from later
// processing failures.
//
// # Preprocessing Pipeline
//
// Binarize produces the mask in three deterministic steps:
//
//  1. Grayscale conversion using standard luminance weights
//  2. Adaptive thresholding with a Gaussian-weighted 11x11 neighborhood and a
//     constant offset of 2, inverted so that diagram ink becomes foreground
//  3. Morphological opening with a 3x3 structuring element to remove speckle
//     noise
//
// The output mask has the same dimensions as the input image, with foreground
// pixels set to 255 and background pixels set to 0.
//
// # Determinism
//
// Preprocessing involves no randomness. The same input bytes always produce
// the same mask, which is what makes content-addressed caching of downstream
// analysis results sound.
package imaging
