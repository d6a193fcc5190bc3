package pipeline

import (
	"container/heap"
	"image"
)

// extractFeatures derives the structural features from a segmentation mask:
// speckle cleanup, watershed-separated leaf regions, union bounding box and
// green pixel count. A degenerate mask yields an empty FeatureSet.
func extractFeatures(mask Mask, opts AnalysisOptions) FeatureSet {
	if mask.Fraction() < opts.MinMaskFraction {
		return FeatureSet{}
	}

	// Opening removes speckle noise, closing fills small gaps inside leaves.
	clean := morphOpen(mask, 1, 2)
	clean = morphClose(clean, 2, 2)

	var bbox image.Rectangle
	green := 0
	first := true
	for y := 0; y < clean.H; y++ {
		for x := 0; x < clean.W; x++ {
			if !clean.At(x, y) {
				continue
			}
			green++
			if first {
				bbox = image.Rect(x, y, x+1, y+1)
				first = false
			} else {
				bbox = bbox.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	if green == 0 {
		return FeatureSet{}
	}

	return FeatureSet{
		LeafRegionCount: countLeafRegions(clean, opts),
		BoundingBox:     bbox,
		HasPlant:        true,
		GreenPixelCount: green,
	}
}

// dilate grows the mask by a square kernel of the given radius. Out-of-bounds
// pixels count as background.
func dilate(m Mask, radius, iterations int) Mask {
	cur := m.clone()
	for it := 0; it < iterations; it++ {
		next := NewMask(cur.W, cur.H)
		for y := 0; y < cur.H; y++ {
			for x := 0; x < cur.W; x++ {
				if neighborhoodAny(cur, x, y, radius) {
					next.Pix[y*cur.W+x] = 1
				}
			}
		}
		cur = next
	}
	return cur
}

// erode shrinks the mask by a square kernel of the given radius.
func erode(m Mask, radius, iterations int) Mask {
	cur := m.clone()
	for it := 0; it < iterations; it++ {
		next := NewMask(cur.W, cur.H)
		for y := 0; y < cur.H; y++ {
			for x := 0; x < cur.W; x++ {
				if neighborhoodAll(cur, x, y, radius) {
					next.Pix[y*cur.W+x] = 1
				}
			}
		}
		cur = next
	}
	return cur
}

func neighborhoodAny(m Mask, x, y, radius int) bool {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= m.W || ny >= m.H {
				continue
			}
			if m.At(nx, ny) {
				return true
			}
		}
	}
	return false
}

func neighborhoodAll(m Mask, x, y, radius int) bool {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= m.W || ny >= m.H {
				return false
			}
			if !m.At(nx, ny) {
				return false
			}
		}
	}
	return true
}

func morphOpen(m Mask, radius, iterations int) Mask {
	return dilate(erode(m, radius, iterations), radius, iterations)
}

func morphClose(m Mask, radius, iterations int) Mask {
	return erode(dilate(m, radius, iterations), radius, iterations)
}

// distanceTransform computes an L2 approximation (two-pass chamfer with
// 1 / sqrt(2) weights) of each plant pixel's distance to the background.
// Out-of-bounds counts as background so border pixels get distance 1.
func distanceTransform(m Mask) []float32 {
	const inf = float32(1e9)
	const diag = float32(1.41421356)

	d := make([]float32, len(m.Pix))
	for i, v := range m.Pix {
		if v != 0 {
			d[i] = inf
		}
	}

	relax := func(i int, x, y, dx, dy int, w float32) {
		nx, ny := x+dx, y+dy
		if nx < 0 || ny < 0 || nx >= m.W || ny >= m.H {
			if w < d[i] {
				d[i] = w
			}
			return
		}
		if c := d[ny*m.W+nx] + w; c < d[i] {
			d[i] = c
		}
	}

	// Forward pass: top-left neighbors
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			i := y*m.W + x
			if d[i] == 0 {
				continue
			}
			relax(i, x, y, -1, 0, 1)
			relax(i, x, y, 0, -1, 1)
			relax(i, x, y, -1, -1, diag)
			relax(i, x, y, 1, -1, diag)
		}
	}
	// Backward pass: bottom-right neighbors
	for y := m.H - 1; y >= 0; y-- {
		for x := m.W - 1; x >= 0; x-- {
			i := y*m.W + x
			if d[i] == 0 {
				continue
			}
			relax(i, x, y, 1, 0, 1)
			relax(i, x, y, 0, 1, 1)
			relax(i, x, y, 1, 1, diag)
			relax(i, x, y, -1, 1, diag)
		}
	}
	return d
}

// countLeafRegions separates touching leaf blobs with watershed-style
// flooding and counts the regions that clear the minimum-area noise floor.
// Seeds are the distance-transform cores above SeedThreshold of the maximum;
// flooding grows them outward over the mask in decreasing-distance order so
// merged blobs split at their necks instead of counting as one.
func countLeafRegions(mask Mask, opts AnalysisOptions) int {
	dist := distanceTransform(mask)

	maxDist := float32(0)
	for _, v := range dist {
		if v > maxDist {
			maxDist = v
		}
	}
	if maxDist == 0 {
		return 0
	}
	thr := float32(opts.SeedThreshold) * maxDist

	// Label the seed cores with 8-connected component labelling over the
	// flat label arena.
	labels := make([]int32, len(mask.Pix))
	next := int32(0)
	queue := make([]int32, 0, 256)
	for i := range mask.Pix {
		if dist[i] < thr || labels[i] != 0 || mask.Pix[i] == 0 {
			continue
		}
		next++
		labels[i] = next
		queue = append(queue[:0], int32(i))
		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			cx, cy := int(cur)%mask.W, int(cur)/mask.W
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := cx+dx, cy+dy
					if nx < 0 || ny < 0 || nx >= mask.W || ny >= mask.H {
						continue
					}
					ni := ny*mask.W + nx
					if labels[ni] == 0 && mask.Pix[ni] != 0 && dist[ni] >= thr {
						labels[ni] = next
						queue = append(queue, int32(ni))
					}
				}
			}
		}
	}
	if next == 0 {
		return 0
	}

	// Flood the remaining plant pixels from the seeds, highest distance
	// first, ties broken by pixel index to keep the result deterministic.
	pq := &floodQueue{}
	heap.Init(pq)
	for i, l := range labels {
		if l != 0 {
			heap.Push(pq, floodItem{dist: dist[i], idx: int32(i)})
		}
	}
	for pq.Len() > 0 {
		it := heap.Pop(pq).(floodItem)
		cx, cy := int(it.idx)%mask.W, int(it.idx)/mask.W
		l := labels[it.idx]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := cx+dx, cy+dy
				if nx < 0 || ny < 0 || nx >= mask.W || ny >= mask.H {
					continue
				}
				ni := ny*mask.W + nx
				if labels[ni] == 0 && mask.Pix[ni] != 0 {
					labels[ni] = l
					heap.Push(pq, floodItem{dist: dist[ni], idx: int32(ni)})
				}
			}
		}
	}

	// Discard sub-leaf regions before counting.
	areas := make([]int, next+1)
	for _, l := range labels {
		if l != 0 {
			areas[l]++
		}
	}
	count := 0
	for _, a := range areas[1:] {
		if a >= opts.MinLeafArea {
			count++
		}
	}
	return count
}

type floodItem struct {
	dist float32
	idx  int32
}

// floodQueue is a max-heap on distance with index tie-breaking.
type floodQueue []floodItem

func (q floodQueue) Len() int { return len(q) }
func (q floodQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist > q[j].dist
	}
	return q[i].idx < q[j].idx
}
func (q floodQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *floodQueue) Push(x interface{}) {
	*q = append(*q, x.(floodItem))
}

func (q *floodQueue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
