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

package sort

import (
	"cmp"

	"github.com/ajroetker/go-par/par/contrib/forkjoin"
)

// Thresholds for the quicksort recursion.
const (
	// insertionThreshold: use insertion sort for slices this size or smaller.
	insertionThreshold = 24

	// forkThreshold: below this size both halves are sorted inline.
	forkThreshold = 2048
)

// QuickSort sorts data in place. Partitions larger than forkThreshold fork
// their halves on pool; a nil pool sorts sequentially.
func QuickSort[T cmp.Ordered](pool *forkjoin.Pool, data []T) {
	n := len(data)
	if n <= 1 {
		return
	}
	if pool == nil {
		pool = forkjoin.New(1)
	}

	// Max recursion depth: 2 * floor(log2(n)).
	maxDepth := 0
	for tmp := n; tmp > 0; tmp >>= 1 {
		maxDepth++
	}
	quick(pool, data, 2*maxDepth)
}

func quick[T cmp.Ordered](pool *forkjoin.Pool, data []T, depthLimit int) {
	n := len(data)
	if n <= insertionThreshold {
		insertion(data)
		return
	}
	if depthLimit == 0 {
		heapsort(data)
		return
	}

	lt, gt := partition3Way(data, pivotSampled(data))
	left, right := data[:lt], data[gt:]
	if n < forkThreshold {
		quick(pool, left, depthLimit-1)
		quick(pool, right, depthLimit-1)
		return
	}

	g := pool.Group()
	g.Fork(func() error {
		quick(pool, left, depthLimit-1)
		return nil
	})
	quick(pool, right, depthLimit-1)
	_ = g.Join()
}

// insertion is insertion sort for small slices.
func insertion[T cmp.Ordered](data []T) {
	for i := 1; i < len(data); i++ {
		key := data[i]
		j := i - 1
		for j >= 0 && data[j] > key {
			data[j+1] = data[j]
			j--
		}
		data[j+1] = key
	}
}

// heapsort bounds the worst case at O(n log n).
func heapsort[T cmp.Ordered](data []T) {
	n := len(data)
	for i := n/2 - 1; i >= 0; i-- {
		siftDown(data, i, n)
	}
	for i := n - 1; i > 0; i-- {
		data[0], data[i] = data[i], data[0]
		siftDown(data, 0, i)
	}
}

func siftDown[T cmp.Ordered](data []T, i, n int) {
	for {
		largest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && data[left] > data[largest] {
			largest = left
		}
		if right < n && data[right] > data[largest] {
			largest = right
		}
		if largest == i {
			return
		}
		data[i], data[largest] = data[largest], data[i]
		i = largest
	}
}

// pivotMedianOf3 selects the median of the first, middle and last elements.
func pivotMedianOf3[T cmp.Ordered](data []T) T {
	n := len(data)
	a, b, c := data[0], data[n/2], data[n-1]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
		if a > b {
			b = a
		}
	}
	return b
}

// pivotSampled selects the median of five evenly spaced samples.
func pivotSampled[T cmp.Ordered](data []T) T {
	n := len(data)
	if n <= 8 {
		return pivotMedianOf3(data)
	}
	samples := []T{data[0], data[n/4], data[n/2], data[3*n/4], data[n-1]}
	insertion(samples)
	return samples[2]
}

// partition3Way rearranges data into < pivot, == pivot, > pivot and returns
// the bounds of the middle section.
func partition3Way[T cmp.Ordered](data []T, pivot T) (int, int) {
	lt, gt, i := 0, len(data), 0
	for i < gt {
		switch {
		case data[i] < pivot:
			data[lt], data[i] = data[i], data[lt]
			lt++
			i++
		case data[i] > pivot:
			gt--
			data[i], data[gt] = data[gt], data[i]
		default:
			i++
		}
	}
	return lt, gt
}

// ShellSort sorts data in place with the gaps n/2, n/4, ..., 1.
func ShellSort[T cmp.Ordered](data []T) {
	n := len(data)
	for gap := n / 2; gap > 0; gap /= 2 {
		for i := gap; i < n; i++ {
			key := data[i]
			j := i
			for j >= gap && data[j-gap] > key {
				data[j] = data[j-gap]
				j -= gap
			}
			data[j] = key
		}
	}
}

// RadixSort sorts data in place with an LSD radix sort, 8 bits per pass. buf
// must hold at least len(data) values.
func RadixSort(data, buf []int32) {
	n := len(data)
	if n <= 1 {
		return
	}
	src, dst := data, buf[:n]
	for shift := 0; shift < 32; shift += 8 {
		radixPass(src, dst, shift)
		src, dst = dst, src
	}
	// Four passes leave the result back in data.
}

// radixPass scatters src into dst ordered by the byte at shift. The sign
// bit is flipped so the byte order matches the signed order.
func radixPass(src, dst []int32, shift int) {
	var count [256]int
	for _, v := range src {
		count[digit(v, shift)]++
	}
	offset := 0
	for b := range count {
		c := count[b]
		count[b] = offset
		offset += c
	}
	for _, v := range src {
		d := digit(v, shift)
		dst[count[d]] = v
		count[d]++
	}
}

func digit(v int32, shift int) uint8 {
	return uint8((uint32(v) ^ 0x80000000) >> shift)
}
