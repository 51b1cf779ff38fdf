package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchbay/patchbay/internal/core/snapshot"
)

func validDoc() *snapshot.Document {
	return &snapshot.Document{
		ID:   uuid.NewString(),
		Name: "patch-1",
		Nodes: []snapshot.NodeRecord{
			{
				ID:      0,
				Type:    "Number",
				Control: 7.0,
				Outputs: []snapshot.PortRecord{{ID: 0, Name: "Value", Value: 7.0}},
			},
			{
				ID:      1,
				Type:    "Add",
				Inputs:  []snapshot.PortRecord{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
				Outputs: []snapshot.PortRecord{{ID: 3, Name: "Result"}},
			},
		},
		Edges:     []snapshot.EdgeRecord{{Src: 0, Dst: 1}},
		CreatedAt: time.Now().UTC(),
		Version:   snapshot.DocumentVersion,
	}
}

func TestValidateStruct_Document(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(validDoc()))
	})

	tests := []struct {
		name    string
		mutate  func(*snapshot.Document)
		field   string
		message string
	}{
		{
			name:    "missing id",
			mutate:  func(d *snapshot.Document) { d.ID = "" },
			field:   "id",
			message: "field is required",
		},
		{
			name:    "malformed id",
			mutate:  func(d *snapshot.Document) { d.ID = "not-a-uuid" },
			field:   "id",
			message: "must be a valid UUID v4",
		},
		{
			name:    "name too long",
			mutate:  func(d *snapshot.Document) { d.Name = strings.Repeat("x", 129) },
			field:   "name",
			message: "maximum value/length is 128",
		},
		{
			name:    "missing node type",
			mutate:  func(d *snapshot.Document) { d.Nodes[0].Type = "" },
			field:   "type",
			message: "field is required",
		},
		{
			name:    "non-numeric version",
			mutate:  func(d *snapshot.Document) { d.Version = "v1" },
			field:   "version",
			message: "must be a numeric document version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)

			err := ValidateStruct(doc)
			require.Error(t, err)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
			assert.Equal(t, tt.message, verrs[0].Message)
		})
	}

	t.Run("collects multiple errors", func(t *testing.T) {
		doc := validDoc()
		doc.ID = "nope"
		doc.Name = strings.Repeat("x", 200)

		err := ValidateStruct(doc)
		require.Error(t, err)

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 2)
	})
}

func TestValidateDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		assert.NoError(t, ValidateDocument(validDoc()))
	})

	t.Run("nil document", func(t *testing.T) {
		err := ValidateDocument(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document is missing")
	})

	t.Run("dangling edge", func(t *testing.T) {
		doc := validDoc()
		doc.Edges = append(doc.Edges, snapshot.EdgeRecord{Src: 0, Dst: 99})

		err := ValidateDocument(doc)
		require.Error(t, err)

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 1)
		assert.Equal(t, "edges[1].dst", verrs[0].Field)
	})

	t.Run("duplicate node id", func(t *testing.T) {
		doc := validDoc()
		doc.Nodes[1].ID = doc.Nodes[0].ID

		err := ValidateDocument(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate node id")
	})

	t.Run("duplicate port id", func(t *testing.T) {
		doc := validDoc()
		doc.Nodes[1].Inputs[0].ID = 0

		err := ValidateDocument(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate port id")
	})
}

func TestValidateStruct_ConfigTags(t *testing.T) {
	type serveConfig struct {
		Addr   string `json:"addr" validate:"required,hostname_port"`
		Level  string `json:"level" validate:"oneof=debug info warn error"`
		Format string `json:"format" validate:"oneof=text json"`
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(serveConfig{
			Addr: "localhost:8080", Level: "info", Format: "json",
		}))
	})

	t.Run("bad address and level", func(t *testing.T) {
		err := ValidateStruct(serveConfig{Addr: "nonsense", Level: "loud", Format: "json"})
		require.Error(t, err)

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 2)
		assert.Equal(t, "addr", verrs[0].Field)
		assert.Equal(t, "must be a valid host:port address", verrs[0].Message)
		assert.Equal(t, "level", verrs[1].Field)
		assert.Equal(t, "must be one of: debug info warn error", verrs[1].Message)
	})
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "id", Value: "x", Message: "must be a valid UUID v4"},
		{Field: "name", Value: "", Message: "field is required"},
	}

	msg := errs.Error()
	assert.Contains(t, msg, "field 'id'")
	assert.Contains(t, msg, "field 'name'")

	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())
}
