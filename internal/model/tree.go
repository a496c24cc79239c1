package model

import (
	"math"
	"sort"
)

// node is a regression tree node. Leaves have feature == -1.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// regressionTree is a CART tree grown by exhaustive squared-error split search.
type regressionTree struct {
	nodes []node
}

type treeGrower struct {
	x               [][]float64
	y               []float64
	maxDepth        int
	minSamplesSplit int
	nFeatures       int
	// importance accumulates weighted impurity decrease per feature.
	importance []float64
	tree       *regressionTree
}

func growTree(x [][]float64, y []float64, rows []int, nFeatures, maxDepth, minSamplesSplit int) (*regressionTree, []float64) {
	g := &treeGrower{
		x:               x,
		y:               y,
		maxDepth:        maxDepth,
		minSamplesSplit: minSamplesSplit,
		nFeatures:       nFeatures,
		importance:      make([]float64, nFeatures),
		tree:            &regressionTree{},
	}
	g.grow(rows, 0)
	return g.tree, g.importance
}

func (g *treeGrower) grow(rows []int, depth int) int {
	id := len(g.tree.nodes)
	mean, sse := meanSSE(g.y, rows)
	g.tree.nodes = append(g.tree.nodes, node{feature: -1, value: mean})
	if depth >= g.maxDepth || len(rows) < g.minSamplesSplit || sse <= 0 {
		return id
	}
	feat, thr, gain, ok := g.bestSplit(rows, sse)
	if !ok {
		return id
	}
	var left, right []int
	for _, r := range rows {
		if g.x[r][feat] <= thr {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	g.importance[feat] += gain
	l := g.grow(left, depth+1)
	rt := g.grow(right, depth+1)
	g.tree.nodes[id] = node{feature: feat, threshold: thr, left: l, right: rt, value: mean}
	return id
}

// bestSplit scans every feature for the threshold minimising the children's
// summed squared error. gain is the parent SSE minus the children's.
func (g *treeGrower) bestSplit(rows []int, parentSSE float64) (feature int, threshold, gain float64, ok bool) {
	sorted := make([]int, len(rows))
	bestChild := math.Inf(1)
	for f := 0; f < g.nFeatures; f++ {
		copy(sorted, rows)
		sort.Slice(sorted, func(i, j int) bool { return g.x[sorted[i]][f] < g.x[sorted[j]][f] })

		var totalSum, totalSq float64
		for _, r := range sorted {
			totalSum += g.y[r]
			totalSq += g.y[r] * g.y[r]
		}
		var leftSum, leftSq float64
		n := float64(len(sorted))
		for i := 0; i < len(sorted)-1; i++ {
			v := g.y[sorted[i]]
			leftSum += v
			leftSq += v * v
			cur, nxt := g.x[sorted[i]][f], g.x[sorted[i+1]][f]
			if cur == nxt {
				continue
			}
			nl := float64(i + 1)
			nr := n - nl
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			child := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if child < bestChild {
				bestChild = child
				feature = f
				threshold = cur + (nxt-cur)/2
				ok = true
			}
		}
	}
	if !ok {
		return 0, 0, 0, false
	}
	gain = parentSSE - bestChild
	if gain < 0 {
		gain = 0
	}
	return feature, threshold, gain, true
}

func (t *regressionTree) predict(row []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.feature < 0 {
			return n.value
		}
		if row[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

func (t *regressionTree) splits() int {
	var n int
	for _, nd := range t.nodes {
		if nd.feature >= 0 {
			n++
		}
	}
	return n
}

func meanSSE(y []float64, rows []int) (mean, sse float64) {
	if len(rows) == 0 {
		return 0, 0
	}
	for _, r := range rows {
		mean += y[r]
	}
	mean /= float64(len(rows))
	for _, r := range rows {
		d := y[r] - mean
		sse += d * d
	}
	return mean, sse
}
