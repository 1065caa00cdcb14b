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

import "testing"

func TestNewImage(t *testing.T) {
	img := NewImage(5, 3)
	if img.Width() != 5 || img.Height() != 3 {
		t.Errorf("NewImage(5, 3) = %dx%d", img.Width(), img.Height())
	}
	if len(img.Row(2)) != 5 {
		t.Errorf("Row(2) has %d pixels, want 5", len(img.Row(2)))
	}
	if img.Row(3) != nil {
		t.Error("Row(3) should be nil")
	}

	empty := NewImage(0, 10)
	if empty.Width() != 0 || empty.Height() != 0 {
		t.Errorf("NewImage(0, 10) = %dx%d, want 0x0", empty.Width(), empty.Height())
	}
}

func TestAtSet(t *testing.T) {
	img := NewImage(4, 4)
	img.Set(1, 2, 7)
	img.Set(9, 9, 1) // ignored
	if got := img.At(1, 2); got != 7 {
		t.Errorf("At(1, 2) = %v, want 7", got)
	}
	if got := img.At(-1, 0); got != 0 {
		t.Errorf("At(-1, 0) = %v, want 0", got)
	}

	clone := img.Clone()
	clone.Set(1, 2, 3)
	if img.At(1, 2) != 7 {
		t.Error("Clone shares pixels with the original")
	}
}

func TestBorders(t *testing.T) {
	tests := []struct {
		index, size          int
		mirror, clamp, wrap int
	}{
		{-1, 5, 0, 0, 4},
		{-2, 5, 1, 0, 3},
		{0, 5, 0, 0, 0},
		{4, 5, 4, 4, 4},
		{5, 5, 4, 4, 0},
		{6, 5, 3, 4, 1},
	}
	for _, tc := range tests {
		if got := Mirror(tc.index, tc.size); got != tc.mirror {
			t.Errorf("Mirror(%d, %d) = %d, want %d", tc.index, tc.size, got, tc.mirror)
		}
		if got := Clamp(tc.index, tc.size); got != tc.clamp {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tc.index, tc.size, got, tc.clamp)
		}
		if got := Wrap(tc.index, tc.size); got != tc.wrap {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tc.index, tc.size, got, tc.wrap)
		}
	}
}
