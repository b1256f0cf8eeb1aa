package review

import (
	"sort"

	"github.com/socratis/socratis-go/pkg/analysis"
)

// Segment is one slice of the essay text, either plain or carrying the
// improvement span that highlights it.
type Segment struct {
	Texto    string
	Melhoria *analysis.Span
}

// NormalizeSpans prepares improvement spans for inline highlighting over text.
// Offsets are rune offsets. Spans with inverted bounds (fim <= inicio) or
// bounds outside the text are discarded; the rest are sorted by inicio and any
// span starting before the previous kept span ended is dropped. First wins;
// overlaps are not merged.
func NormalizeSpans(text string, spans []analysis.Span) []analysis.Span {
	n := len([]rune(text))

	candidates := make([]analysis.Span, 0, len(spans))
	for _, s := range spans {
		if s.Fim <= s.Inicio {
			continue
		}
		candidates = append(candidates, s)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Inicio < candidates[j].Inicio
	})

	kept := make([]analysis.Span, 0, len(candidates))
	lastEnd := -1
	for _, s := range candidates {
		if s.Inicio < 0 || s.Fim > n {
			continue
		}
		if s.Inicio < lastEnd {
			continue
		}
		kept = append(kept, s)
		lastEnd = s.Fim
	}
	return kept
}

// Segmentar partitions text into alternating plain and highlighted segments.
// The segments concatenate back to the original text: no gaps, no duplication.
func Segmentar(text string, spans []analysis.Span) []Segment {
	if text == "" {
		return []Segment{{Texto: ""}}
	}
	normalized := NormalizeSpans(text, spans)
	if len(normalized) == 0 {
		return []Segment{{Texto: text}}
	}

	runes := []rune(text)
	segments := make([]Segment, 0, 2*len(normalized)+1)
	cursor := 0
	for i := range normalized {
		s := normalized[i]
		if s.Inicio > cursor {
			segments = append(segments, Segment{Texto: string(runes[cursor:s.Inicio])})
		}
		segments = append(segments, Segment{Texto: string(runes[s.Inicio:s.Fim]), Melhoria: &normalized[i]})
		cursor = s.Fim
	}
	if cursor < len(runes) {
		segments = append(segments, Segment{Texto: string(runes[cursor:])})
	}
	return segments
}
