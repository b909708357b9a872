// Copyright (C) 2026 AgnusAI contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package diffengine

import "hash/fnv"

// lineHashes computes an FNV-1a 32-bit hash per line, cached so the
// Myers inner loop can reject unequal lines with a single machine-word
// compare instead of a full string compare on every step. A hash match
// is not proof of equality: linesEqual falls back to comparing the
// actual strings whenever the hashes agree, so a collision never
// produces a wrong edit script.
func lineHashes(lines []string) []uint32 {
	out := make([]uint32, len(lines))
	h := fnv.New32a()
	for i, l := range lines {
		h.Reset()
		_, _ = h.Write([]byte(l))
		out[i] = h.Sum32()
	}
	return out
}

// linesEqual reports whether aLines[x] and bLines[y] are the same line.
// The hash comparison is the fast path; on a hash match it still
// compares the strings themselves before declaring equality.
func linesEqual(ah, bh []uint32, aLines, bLines []string, x, y int) bool {
	if ah[x] != bh[y] {
		return false
	}
	return aLines[x] == bLines[y]
}

// myers computes the shortest edit script transforming aLines into
// bLines using the O(N*D) algorithm from Myers (1986). It returns
// nil, false if the edit distance would exceed MaxEditDistance.
func myers(aLines, bLines []string) ([]Op, bool) {
	ah, bh := lineHashes(aLines), lineHashes(bLines)
	n, m := len(aLines), len(bLines)
	max := n + m
	if max == 0 {
		return nil, true
	}

	offset := max
	size := 2*max + 1
	// trace[d] holds a snapshot of the v array (furthest-reaching x per
	// diagonal) taken at the start of round d, i.e. as round d-1 left it,
	// needed to backtrack the actual path.
	trace := make([][]int, 0, max+1)
	v := make([]int, size)

	var editDistance int
	found := false

loop:
	for d := 0; d <= max; d++ {
		if d > MaxEditDistance {
			return nil, false
		}
		snapshot := make([]int, size)
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k

			for x < n && y < m && linesEqual(ah, bh, aLines, bLines, x, y) {
				x++
				y++
			}
			v[offset+k] = x

			if x >= n && y >= m {
				editDistance = d
				found = true
				break loop
			}
		}
	}

	if !found {
		return nil, false
	}

	return backtrack(trace, editDistance, n, m, offset), true
}

// backtrack walks the recorded v-snapshots from the end back to the
// origin to recover the actual sequence of insert/delete/equal ops.
func backtrack(trace [][]int, d, n, m, offset int) []Op {
	ops := make([]Op, 0, n+m)
	x, y := n, m

	for depth := d; depth > 0; depth-- {
		v := trace[depth]
		k := x - y

		var prevK int
		if k == -depth || (k != depth && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			ops = append(ops, Op{Kind: OpEqual, OldLine: x - 1, NewLine: y - 1})
			x--
			y--
		}

		if x == prevX {
			ops = append(ops, Op{Kind: OpInsert, OldLine: -1, NewLine: y - 1})
		} else {
			ops = append(ops, Op{Kind: OpDelete, OldLine: x - 1, NewLine: -1})
		}
		x, y = prevX, prevY
	}

	for x > 0 && y > 0 {
		ops = append(ops, Op{Kind: OpEqual, OldLine: x - 1, NewLine: y - 1})
		x--
		y--
	}

	// ops was built back-to-front during backtracking; reverse it.
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}
