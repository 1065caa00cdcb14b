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

package image

import (
	"context"

	"github.com/ajroetker/go-par/par"
)

// Kernel3x3 holds the taps of a 3x3 stencil, row by row.
type Kernel3x3 [9]float64

// Identity returns the kernel with only the center tap set.
func Identity() Kernel3x3 {
	return Kernel3x3{4: 1}
}

// Mean returns the 3x3 box blur.
func Mean() Kernel3x3 {
	var k Kernel3x3
	for i := range k {
		k[i] = 1.0 / 9
	}
	return k
}

// Gaussian returns the 3x3 binomial approximation of a Gaussian blur.
func Gaussian() Kernel3x3 {
	return Kernel3x3{
		1.0 / 16, 2.0 / 16, 1.0 / 16,
		2.0 / 16, 4.0 / 16, 2.0 / 16,
		1.0 / 16, 2.0 / 16, 1.0 / 16,
	}
}

// SobelX returns the horizontal Sobel gradient kernel.
func SobelX() Kernel3x3 {
	return Kernel3x3{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}
}

// ConvolveRows applies k to the rows owned of src, an image of the given
// width, and writes them to dst, which holds exactly the owned rows. Rows
// and columns outside src are resolved with border.
func ConvolveRows(src []float64, width int, owned par.Range, dst []float64, k Kernel3x3, border Border) {
	height := len(src) / width
	for y := owned.Start; y < owned.End(); y++ {
		out := dst[(y-owned.Start)*width : (y-owned.Start+1)*width]
		for x := range width {
			var sum float64
			for dy := -1; dy <= 1; dy++ {
				row := src[border(y+dy, height)*width:]
				for dx := -1; dx <= 1; dx++ {
					sum += k[(dy+1)*3+dx+1] * row[border(x+dx, width)]
				}
			}
			out[x] = sum
		}
	}
}

// Convolve applies k to src and writes the result to dst on d, mirroring
// at the edges. Images narrower or shorter than 3 pixels are copied
// unchanged.
func Convolve(ctx context.Context, d par.Driver, src, dst *Image, k Kernel3x3) error {
	if !SameSize(src, dst) {
		return par.Invalid("convolution output is %dx%d, input %dx%d", dst.width, dst.height, src.width, src.height)
	}
	if src.width < 3 || src.height < 3 {
		copy(dst.pix, src.pix)
		return nil
	}
	width := src.width
	return par.Map(ctx, d, src.pix, dst.pix, par.Layout{Unit: width, Halo: 1},
		func(ctx context.Context, chunk []float64, owned par.Range, out []float64) error {
			ConvolveRows(chunk, width, owned, out, k, Mirror)
			return nil
		})
}
