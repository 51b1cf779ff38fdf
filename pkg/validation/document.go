package validation

import (
	"fmt"

	"github.com/patchbay/patchbay/internal/core/snapshot"
)

// ValidateDocument runs tag validation plus the referential checks a
// well-formed snapshot must satisfy: unique node and port ids, and edges
// that reference captured ports. Restore would reject such documents
// anyway; validating first yields field-level errors instead of a failed
// rebuild.
func ValidateDocument(doc *snapshot.Document) error {
	if doc == nil {
		return ValidationErrors{{Field: "document", Message: "document is missing"}}
	}
	if err := ValidateStruct(doc); err != nil {
		return err
	}

	var errors ValidationErrors

	nodes := make(map[int32]bool, len(doc.Nodes))
	ports := make(map[int32]bool)
	for i, n := range doc.Nodes {
		if nodes[n.ID] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("nodes[%d].id", i),
				Value:   n.ID,
				Message: "duplicate node id",
			})
		}
		nodes[n.ID] = true

		for _, p := range n.Inputs {
			if ports[p.ID] {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("nodes[%d].inputs", i),
					Value:   p.ID,
					Message: "duplicate port id",
				})
			}
			ports[p.ID] = true
		}
		for _, p := range n.Outputs {
			if ports[p.ID] {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("nodes[%d].outputs", i),
					Value:   p.ID,
					Message: "duplicate port id",
				})
			}
			ports[p.ID] = true
		}
	}

	for i, e := range doc.Edges {
		if !ports[e.Src] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("edges[%d].src", i),
				Value:   e.Src,
				Message: "edge references a port missing from the document",
			})
		}
		if !ports[e.Dst] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("edges[%d].dst", i),
				Value:   e.Dst,
				Message: "edge references a port missing from the document",
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}
