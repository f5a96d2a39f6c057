package syntax

import (
	"fmt"
	"slices"
	"sync/atomic"
)

var annotationIDs atomic.Uint64

// Annotation is an opaque marker attached to a node. Two annotations are
// equal only when both kind and id match.
type Annotation struct {
	Kind string
	ID   uint64
}

// NewAnnotation returns a fresh annotation of the given kind.
func NewAnnotation(kind string) Annotation {
	return Annotation{Kind: kind, ID: annotationIDs.Add(1)}
}

func (a Annotation) String() string {
	return fmt.Sprintf("%s#%d", a.Kind, a.ID)
}

// mergeAnnotations appends the annotations of add that existing lacks.
func mergeAnnotations(existing, add []Annotation) []Annotation {
	out := slices.Clone(existing)
	for _, a := range add {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}
