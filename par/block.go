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

package par

// BlockRange is a rectangular block of a row-major 2-D buffer.
type BlockRange struct {
	Row0, Col0 int
	Rows, Cols int
}

// Size returns the number of cells in the block.
func (b BlockRange) Size() int {
	return b.Rows * b.Cols
}

// RowRange returns the row extent of the block.
func (b BlockRange) RowRange() Range {
	return Range{Start: b.Row0, Len: b.Rows}
}

// ColRange returns the column extent of the block.
func (b BlockRange) ColRange() Range {
	return Range{Start: b.Col0, Len: b.Cols}
}

// Partition2D splits a rows x cols grid into at most pr x pc blocks, the
// cartesian product of Partition(rows, pr) and Partition(cols, pc), in
// row-major block order.
func Partition2D(rows, cols, pr, pc int) []BlockRange {
	rowParts := Partition(rows, pr)
	colParts := Partition(cols, pc)
	if len(rowParts) == 0 || len(colParts) == 0 {
		return nil
	}
	blocks := make([]BlockRange, 0, len(rowParts)*len(colParts))
	for _, r := range rowParts {
		for _, c := range colParts {
			blocks = append(blocks, BlockRange{Row0: r.Start, Col0: c.Start, Rows: r.Len, Cols: c.Len})
		}
	}
	return blocks
}

// GridShape picks a pr x pc factorization of p with pr*pc <= p that is as
// square as possible, used to feed Partition2D from a single worker count.
func GridShape(p int) (pr, pc int) {
	if p < 1 {
		return 1, 1
	}
	pr = 1
	for f := 1; f*f <= p; f++ {
		if p%f == 0 {
			pr = f
		}
	}
	return pr, p / pr
}
