// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package depict

import (
	"math"

	"github.com/pdiddy/cddprep/internal/smiles"
)

// Point is a 2D coordinate in bond-length units.
type Point struct{ X, Y float64 }

const (
	stressIterations = 300
	componentGap     = 1.5
)

// Layout computes 2D coordinates for every atom of m with unit bond length.
// Each connected component is seeded by classical MDS over graph distances
// and refined by stress majorization; components are placed left to right.
// The result is deterministic for a given molecule.
func Layout(m *smiles.Molecule) []Point {
	pts := make([]Point, len(m.Atoms))
	offset := 0.0
	for _, comp := range m.Components() {
		local := layoutComponent(m, comp)
		minX, maxX, minY, maxY := bounds(local)
		midY := (minY + maxY) / 2
		for k, a := range comp {
			pts[a] = Point{X: local[k].X - minX + offset, Y: local[k].Y - midY}
		}
		offset += maxX - minX + componentGap
	}
	return pts
}

func layoutComponent(m *smiles.Molecule, comp []int) []Point {
	n := len(comp)
	switch n {
	case 1:
		return []Point{{}}
	case 2:
		return []Point{{}, {X: 1}}
	}

	d := graphDistances(m, comp)
	target := make([][]float64, n)
	for i := range target {
		target[i] = make([]float64, n)
		for j := range target[i] {
			target[i][j] = idealDistance(d[i][j])
		}
	}

	pts := classicalMDS(target)
	stressMajorize(pts, target)
	normalizeBondLength(m, comp, pts)
	return pts
}

// idealDistance maps a path length in bonds to a drawing distance that
// favors 120 degree zig-zags.
func idealDistance(hops int) float64 {
	switch hops {
	case 0:
		return 0
	case 1:
		return 1
	}
	return float64(hops) * math.Sqrt(3) / 2
}

func graphDistances(m *smiles.Molecule, comp []int) [][]int {
	local := make(map[int]int, len(comp))
	for k, a := range comp {
		local[a] = k
	}
	n := len(comp)
	d := make([][]int, n)
	for s := range comp {
		d[s] = make([]int, n)
		for i := range d[s] {
			d[s][i] = -1
		}
		d[s][s] = 0
		queue := []int{comp[s]}
		for len(queue) > 0 {
			a := queue[0]
			queue = queue[1:]
			for _, nb := range m.Neighbors(a) {
				k := local[nb]
				if d[s][k] < 0 {
					d[s][k] = d[s][local[a]] + 1
					queue = append(queue, nb)
				}
			}
		}
	}
	return d
}

// classicalMDS embeds the distance matrix in two dimensions using the top
// two eigenvectors of the double-centered squared distances.
func classicalMDS(dist [][]float64) []Point {
	n := len(dist)
	b := make([][]float64, n)
	rowMean := make([]float64, n)
	total := 0.0
	for i := range dist {
		b[i] = make([]float64, n)
		for j := range dist[i] {
			sq := dist[i][j] * dist[i][j]
			b[i][j] = sq
			rowMean[i] += sq
			total += sq
		}
		rowMean[i] /= float64(n)
	}
	total /= float64(n * n)
	for i := range b {
		for j := range b[i] {
			b[i][j] = -0.5 * (b[i][j] - rowMean[i] - rowMean[j] + total)
		}
	}

	v1 := make([]float64, n)
	v2 := make([]float64, n)
	for i := range v1 {
		v1[i] = math.Cos(float64(i)*0.7) + 0.1*float64(i)
		v2[i] = math.Sin(float64(i)*1.3) - 0.05*float64(i)
	}
	l1 := powerIterate(b, v1, nil)
	l2 := powerIterate(b, v2, v1)

	pts := make([]Point, n)
	s1, s2 := math.Sqrt(math.Max(l1, 0)), math.Sqrt(math.Max(l2, 0))
	for i := range pts {
		pts[i] = Point{X: v1[i] * s1, Y: v2[i] * s2}
	}
	// Collinear seeds (chains) get a small deterministic zig-zag so the
	// majorization can bend them.
	if s2 < 1e-6 {
		for i := range pts {
			if i%2 == 1 {
				pts[i].Y = 0.5
			}
		}
	}
	return pts
}

// powerIterate normalizes v to the eigenvector of m with the largest
// eigenvalue, kept centered and orthogonal to deflate when given, and returns
// that eigenvalue. m is shifted by its Gershgorin bound so negative
// eigenvalues never dominate.
func powerIterate(m [][]float64, v, deflate []float64) float64 {
	n := len(v)
	shift := 0.0
	for i := range m {
		row := 0.0
		for j := range m[i] {
			row += math.Abs(m[i][j])
		}
		shift = math.Max(shift, row)
	}

	tmp := make([]float64, n)
	lambda := 0.0
	for iter := 0; iter < 200; iter++ {
		center(v)
		if deflate != nil {
			orthogonalize(v, deflate)
		}
		if !normalize(v) {
			return 0
		}
		for i := range tmp {
			s := shift * v[i]
			for j := range v {
				s += m[i][j] * v[j]
			}
			tmp[i] = s
		}
		lambda = dot(v, tmp) - shift
		copy(v, tmp)
	}
	center(v)
	if deflate != nil {
		orthogonalize(v, deflate)
	}
	normalize(v)
	return lambda
}

func center(v []float64) {
	mean := 0.0
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))
	for i := range v {
		v[i] -= mean
	}
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func orthogonalize(v, u []float64) {
	p := dot(v, u)
	for i := range v {
		v[i] -= p * u[i]
	}
}

func normalize(v []float64) bool {
	norm := math.Sqrt(dot(v, v))
	if norm < 1e-12 {
		return false
	}
	for i := range v {
		v[i] /= norm
	}
	return true
}

// stressMajorize refines pts toward the target distances with localized
// Gauss-Seidel updates weighted by 1/d^2.
func stressMajorize(pts []Point, target [][]float64) {
	n := len(pts)
	for iter := 0; iter < stressIterations; iter++ {
		for i := 0; i < n; i++ {
			var sx, sy, sw float64
			for j := 0; j < n; j++ {
				if i == j || target[i][j] == 0 {
					continue
				}
				w := 1 / (target[i][j] * target[i][j])
				dx, dy := pts[i].X-pts[j].X, pts[i].Y-pts[j].Y
				dist := math.Hypot(dx, dy)
				if dist < 1e-9 {
					// nudge coincident atoms apart deterministically
					dx, dy, dist = 1e-3*float64(i-j), 1e-3, math.Hypot(1e-3*float64(i-j), 1e-3)
				}
				sx += w * (pts[j].X + target[i][j]*dx/dist)
				sy += w * (pts[j].Y + target[i][j]*dy/dist)
				sw += w
			}
			if sw > 0 {
				pts[i] = Point{X: sx / sw, Y: sy / sw}
			}
		}
	}
}

func normalizeBondLength(m *smiles.Molecule, comp []int, pts []Point) {
	local := make(map[int]int, len(comp))
	for k, a := range comp {
		local[a] = k
	}
	var sum float64
	var count int
	for _, b := range m.Bonds {
		i, okI := local[b.From]
		j, okJ := local[b.To]
		if !okI || !okJ {
			continue
		}
		sum += math.Hypot(pts[i].X-pts[j].X, pts[i].Y-pts[j].Y)
		count++
	}
	if count == 0 || sum == 0 {
		return
	}
	scale := float64(count) / sum
	for i := range pts {
		pts[i].X *= scale
		pts[i].Y *= scale
	}
}

func bounds(pts []Point) (minX, maxX, minY, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return
}
