package verify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ppiankov/truthlens/internal/llm"
	"github.com/ppiankov/truthlens/internal/model"
)

// SchemaError reports model output that does not satisfy the verdict schema
type SchemaError struct {
	Reason string
	Raw    string
}

func (e *SchemaError) Error() string {
	return "verdict schema: " + e.Reason
}

// wireVerdict is the exact shape the model must return. Pointer fields
// make every key mandatory; unknown keys are rejected while decoding.
type wireVerdict struct {
	Verdict    *string  `json:"verdict" validate:"required,oneof=Supported Contradicted Unverified"`
	Confidence *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
	Reasoning  *string  `json:"reasoning" validate:"required,min=1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses raw model output into a ModelVerdict. One surrounding
// markdown code fence is tolerated; anything else outside the single JSON
// object is a SchemaError. When allowedURLs is non-nil, reasoning that
// cites a URL outside it is rejected.
func Decode(raw string, allowedURLs []string) (model.ModelVerdict, error) {
	body := stripFence(raw)
	if body == "" {
		return model.ModelVerdict{}, &SchemaError{Reason: "empty response", Raw: raw}
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var wire wireVerdict
	if err := dec.Decode(&wire); err != nil {
		return model.ModelVerdict{}, &SchemaError{Reason: fmt.Sprintf("decode: %v", err), Raw: raw}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return model.ModelVerdict{}, &SchemaError{Reason: "trailing data after verdict object", Raw: raw}
	}

	if err := validate.Struct(wire); err != nil {
		return model.ModelVerdict{}, &SchemaError{Reason: describe(err), Raw: raw}
	}

	verdict := model.ModelVerdict{
		Verdict:    model.Verdict(*wire.Verdict),
		Confidence: *wire.Confidence,
		Reasoning:  strings.TrimSpace(*wire.Reasoning),
	}

	if allowedURLs != nil {
		for _, cited := range llm.ExtractURLs(verdict.Reasoning) {
			if !slices.Contains(allowedURLs, cited) {
				return model.ModelVerdict{}, &SchemaError{Reason: "reasoning cites a source outside the evidence: " + cited, Raw: raw}
			}
		}
	}

	return verdict, nil
}

// stripFence removes one ```json ... ``` or ``` ... ``` wrapper
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(s[:nl]); tag == "" || strings.EqualFold(tag, "json") {
			s = s[nl+1:]
		}
	} else if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		// ```json{...}``` on one line
		s = s[4:]
	}
	return strings.TrimSpace(s)
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
