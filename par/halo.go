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

// HaloRange is an owned range plus a read-only neighborhood of Halo units on
// each side. The effective (readable) range is clamped at the global
// boundaries [0, n):
//
//	Effective(n).Start = max(0, Owned.Start-Halo)
//	Effective(n).End() = min(n, Owned.End()+Halo)
type HaloRange struct {
	Owned Range
	Halo  int
}

// Effective returns the readable range, clamped to [0, n).
func (h HaloRange) Effective(n int) Range {
	start := max(0, h.Owned.Start-h.Halo)
	end := min(n, h.Owned.End()+h.Halo)
	return Range{Start: start, Len: end - start}
}

// Left returns the actual halo width before the owned range.
func (h HaloRange) Left() int {
	return h.Owned.Start - max(0, h.Owned.Start-h.Halo)
}

// Right returns the actual halo width after the owned range.
func (h HaloRange) Right(n int) int {
	return min(n, h.Owned.End()+h.Halo) - h.Owned.End()
}

// Local returns the owned range expressed in coordinates of the effective
// range, i.e. where the owned units sit inside a scattered chunk.
func (h HaloRange) Local() Range {
	return Range{Start: h.Left(), Len: h.Owned.Len}
}

// PartitionHalo partitions [0, n) like Partition and attaches a halo of the
// given width to every range.
func PartitionHalo(n, p, halo int) []HaloRange {
	ranges := Partition(n, p)
	out := make([]HaloRange, len(ranges))
	for i, r := range ranges {
		out[i] = HaloRange{Owned: r, Halo: max(0, halo)}
	}
	return out
}

// CommTables holds scatter and gather count/displacement tables, in
// elements, for a halo partition of a buffer of n units of unit elements.
type CommTables struct {
	ScatterCounts []int
	ScatterDispls []int
	GatherCounts  []int
	GatherDispls  []int
}

// Tables generates the scatter tables from the effective ranges and the
// gather tables from the owned ranges, so that gathered data lands exactly on
// the owned offsets of the output buffer.
func Tables(ranges []HaloRange, n, unit int) CommTables {
	t := CommTables{
		ScatterCounts: make([]int, len(ranges)),
		ScatterDispls: make([]int, len(ranges)),
		GatherCounts:  make([]int, len(ranges)),
		GatherDispls:  make([]int, len(ranges)),
	}
	for i, h := range ranges {
		eff := h.Effective(n)
		t.ScatterCounts[i] = eff.Len * unit
		t.ScatterDispls[i] = eff.Start * unit
		t.GatherCounts[i] = h.Owned.Len * unit
		t.GatherDispls[i] = h.Owned.Start * unit
	}
	return t
}
