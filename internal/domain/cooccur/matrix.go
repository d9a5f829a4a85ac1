package cooccur

import "sort"

// Observation is one (patient, code) event from the uploaded dataset.
type Observation struct {
	PatientID int64
	Code      string
}

// Neighbor is a co-occurring code with its edge weight.
type Neighbor struct {
	Code   string  `json:"code"`
	Weight float64 `json:"weight"`
}

// Matrix is a symmetric co-occurrence matrix over a fixed, sorted code
// vocabulary. Cell (i,j) counts how often codes i and j were recorded for
// the same patient, weighted by per-patient occurrence counts. The diagonal
// is zero.
type Matrix struct {
	Codes []string
	Index map[string]int
	Data  [][]float64
}

// Build computes the co-occurrence matrix for a set of observations.
// Per patient a count vector over the vocabulary is formed and its outer
// product accumulated, then the diagonal is zeroed. The vocabulary is the
// sorted set of distinct codes, so the result is deterministic for a given
// input regardless of record order.
func Build(obs []Observation) *Matrix {
	codeSet := make(map[string]struct{})
	for _, o := range obs {
		if o.Code != "" {
			codeSet[o.Code] = struct{}{}
		}
	}
	codes := make([]string, 0, len(codeSet))
	for c := range codeSet {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	m := newMatrix(codes)

	perPatient := make(map[int64]map[int]float64)
	for _, o := range obs {
		if o.Code == "" {
			continue
		}
		counts, ok := perPatient[o.PatientID]
		if !ok {
			counts = make(map[int]float64)
			perPatient[o.PatientID] = counts
		}
		counts[m.Index[o.Code]]++
	}

	for _, counts := range perPatient {
		for i, ci := range counts {
			for j, cj := range counts {
				if i == j {
					continue
				}
				m.Data[i][j] += ci * cj
			}
		}
	}

	return m
}

func newMatrix(codes []string) *Matrix {
	index := make(map[string]int, len(codes))
	for i, c := range codes {
		index[c] = i
	}
	data := make([][]float64, len(codes))
	for i := range data {
		data[i] = make([]float64, len(codes))
	}
	return &Matrix{Codes: codes, Index: index, Data: data}
}

// Len returns the vocabulary size.
func (m *Matrix) Len() int {
	return len(m.Codes)
}

// Has reports whether a code is part of the vocabulary.
func (m *Matrix) Has(code string) bool {
	_, ok := m.Index[code]
	return ok
}

// At returns the co-occurrence weight of two codes, 0 when either is
// unknown.
func (m *Matrix) At(a, b string) float64 {
	i, ok := m.Index[a]
	if !ok {
		return 0
	}
	j, ok := m.Index[b]
	if !ok {
		return 0
	}
	return m.Data[i][j]
}

// WeightedDegree is the row sum of a code: the total co-occurrence mass it
// participates in.
func (m *Matrix) WeightedDegree(code string) float64 {
	i, ok := m.Index[code]
	if !ok {
		return 0
	}
	var sum float64
	for _, v := range m.Data[i] {
		sum += v
	}
	return sum
}

// ConnectionDegree counts the distinct codes a code co-occurs with.
func (m *Matrix) ConnectionDegree(code string) int {
	i, ok := m.Index[code]
	if !ok {
		return 0
	}
	n := 0
	for _, v := range m.Data[i] {
		if v != 0 {
			n++
		}
	}
	return n
}

// TotalWeight is the sum over all cells.
func (m *Matrix) TotalWeight() float64 {
	var sum float64
	for _, row := range m.Data {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// Sub extracts the sub-matrix over the given codes, keeping their order.
// Duplicates and codes outside the vocabulary are skipped.
func (m *Matrix) Sub(codes []string) *Matrix {
	var kept []string
	seen := make(map[string]struct{})
	for _, c := range codes {
		if _, ok := m.Index[c]; !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		kept = append(kept, c)
	}

	sub := newMatrix(kept)
	for i, a := range kept {
		for j, b := range kept {
			sub.Data[i][j] = m.Data[m.Index[a]][m.Index[b]]
		}
	}
	return sub
}

// Filter extracts the sub-matrix over the codes accepted by keep, preserving
// the vocabulary order.
func (m *Matrix) Filter(keep func(code string) bool) *Matrix {
	var kept []string
	for _, c := range m.Codes {
		if keep(c) {
			kept = append(kept, c)
		}
	}
	return m.Sub(kept)
}

// TopCodes returns up to n codes accepted by keep, ordered by weighted
// degree descending with the code as tie-breaker.
func (m *Matrix) TopCodes(n int, keep func(code string) bool) []string {
	type scored struct {
		code   string
		weight float64
	}
	var all []scored
	for _, c := range m.Codes {
		if keep == nil || keep(c) {
			all = append(all, scored{c, m.WeightedDegree(c)})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].weight != all[j].weight {
			return all[i].weight > all[j].weight
		}
		return all[i].code < all[j].code
	})
	if n > len(all) {
		n = len(all)
	}
	codes := make([]string, n)
	for i := 0; i < n; i++ {
		codes[i] = all[i].code
	}
	return codes
}

// TopNeighbors returns up to k codes with the strongest co-occurrence to
// code, ordered by weight descending with the code as tie-breaker. Zero
// weights never qualify.
func (m *Matrix) TopNeighbors(code string, k int, keep func(code string) bool) []Neighbor {
	i, ok := m.Index[code]
	if !ok {
		return nil
	}
	var all []Neighbor
	for j, v := range m.Data[i] {
		if v == 0 || j == i {
			continue
		}
		other := m.Codes[j]
		if keep != nil && !keep(other) {
			continue
		}
		all = append(all, Neighbor{Code: other, Weight: v})
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].Weight != all[b].Weight {
			return all[a].Weight > all[b].Weight
		}
		return all[a].Code < all[b].Code
	})
	if k > len(all) {
		k = len(all)
	}
	return all[:k]
}
