// Copyright 2025 go-par Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package image provides a single-channel image type and a parallel 3x3
// stencil convolution.
//
// Convolution partitions the image by rows. Every range reads one halo row
// above and below the rows it owns and writes only its own rows, so ranges
// never synchronize. On the distributed driver the halo rows travel with
// each rank's chunk.
//
// # Edge Handling
//
// Coordinate helper functions for handling out-of-bounds pixel access:
//
//	Mirror(index, size) - reflect at boundaries
//	Clamp(index, size)  - repeat edge pixels
//	Wrap(index, size)   - tile/wrap around
package image

// Image is a single-channel 2D array stored row by row.
type Image struct {
	width, height int
	pix           []float64
}

// NewImage creates a zeroed image with the specified dimensions.
func NewImage(width, height int) *Image {
	if width <= 0 || height <= 0 {
		return &Image{}
	}
	return &Image{width: width, height: height, pix: make([]float64, width*height)}
}

// FromPixels wraps pix, which holds height rows of width pixels.
func FromPixels(width, height int, pix []float64) *Image {
	return &Image{width: width, height: height, pix: pix}
}

// Width returns the image width in pixels.
func (img *Image) Width() int {
	return img.width
}

// Height returns the image height in pixels.
func (img *Image) Height() int {
	return img.height
}

// Pix returns the pixels, row by row.
func (img *Image) Pix() []float64 {
	return img.pix
}

// Row returns a mutable slice for the specified row.
func (img *Image) Row(y int) []float64 {
	if y < 0 || y >= img.height {
		return nil
	}
	return img.pix[y*img.width : (y+1)*img.width]
}

// At returns the value at position (x, y), or 0 outside the image.
func (img *Image) At(x, y int) float64 {
	if x < 0 || x >= img.width || y < 0 || y >= img.height {
		return 0
	}
	return img.pix[y*img.width+x]
}

// Set sets the value at position (x, y).
func (img *Image) Set(x, y int, value float64) {
	if x < 0 || x >= img.width || y < 0 || y >= img.height {
		return
	}
	img.pix[y*img.width+x] = value
}

// SameSize returns true if both images have the same dimensions.
func SameSize(a, b *Image) bool {
	return a.width == b.width && a.height == b.height
}

// Clone creates a deep copy of the image.
func (img *Image) Clone() *Image {
	clone := &Image{width: img.width, height: img.height, pix: make([]float64, len(img.pix))}
	copy(clone.pix, img.pix)
	return clone
}

// Border maps an out-of-bounds index into [0, size).
type Border func(index, size int) int

// Mirror returns the mirrored index for out-of-bounds coordinates.
// Given bounds [0, size), mirrors index to stay within bounds.
func Mirror(index, size int) int {
	if size <= 0 {
		return 0
	}
	if index < 0 {
		index = -index - 1
	}
	if index >= size {
		period := 2 * size
		index = index % period
		if index >= size {
			index = period - index - 1
		}
	}
	return index
}

// Clamp returns index clamped to [0, size-1].
func Clamp(index, size int) int {
	return max(0, min(index, size-1))
}

// Wrap returns index wrapped to [0, size) using modulo.
func Wrap(index, size int) int {
	if size <= 0 {
		return 0
	}
	index %= size
	if index < 0 {
		index += size
	}
	return index
}
