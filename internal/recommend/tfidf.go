// Package recommend holds the destination ranking models served by cmd/api.
package recommend

import (
	"math"
	"regexp"
	"strings"
)

// tokens are runs of two or more word characters, lower-cased
var tokenRE = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be because been
		before being below between both but by can could did do does doing down during each few for from further
		had has have having he her here hers herself him himself his how if in into is it its itself just me more
		most my myself no nor not of off on once only or other our ours ourselves out over own same she should so
		some such than that the their theirs them themselves then there these they this those through to too under
		until up very was we were what when where which while who whom why will with would you your yours yourself`) {
		stopWords[w] = struct{}{}
	}
}

func Tokenize(s string) []string {
	var out []string
	for _, t := range tokenRE.FindAllString(strings.ToLower(s), -1) {
		if _, stop := stopWords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

type vector map[string]float64

// TFIDF is a fitted vocabulary with smoothed idf weights and the l2-normalised
// document vectors it was fitted on.
type TFIDF struct {
	idf  map[string]float64
	docs []vector
}

func FitTFIDF(docs []string) *TFIDF {
	m := &TFIDF{idf: map[string]float64{}, docs: make([]vector, len(docs))}
	df := map[string]int{}
	counts := make([]map[string]int, len(docs))
	for i, d := range docs {
		counts[i] = termCounts(Tokenize(d))
		for t := range counts[i] {
			df[t]++
		}
	}
	n := float64(len(docs))
	for t, f := range df {
		m.idf[t] = math.Log((1+n)/(1+float64(f))) + 1
	}
	for i := range docs {
		m.docs[i] = m.weigh(counts[i])
	}
	return m
}

// Similarities returns the cosine similarity of query against every fitted
// document, in fit order. Terms outside the vocabulary are ignored.
func (m *TFIDF) Similarities(query string) []float64 {
	q := m.weigh(termCounts(Tokenize(query)))
	out := make([]float64, len(m.docs))
	for i, d := range m.docs {
		out[i] = dot(q, d)
	}
	return out
}

func (m *TFIDF) weigh(counts map[string]int) vector {
	v := vector{}
	var norm float64
	for t, c := range counts {
		idf, ok := m.idf[t]
		if !ok {
			continue
		}
		w := float64(c) * idf
		v[t] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for t := range v {
		v[t] /= norm
	}
	return v
}

func termCounts(toks []string) map[string]int {
	c := make(map[string]int, len(toks))
	for _, t := range toks {
		c[t]++
	}
	return c
}

func dot(a, b vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var s float64
	for t, w := range a {
		s += w * b[t]
	}
	return s
}
