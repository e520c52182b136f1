package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/schema"
	"github.com/AndreyAkinshin/specoracle/internal/value"
)

// Actual is the outcome of one solver run, supplied by an external runner.
// Exactly one of a solve outcome (Status and friends) or Error is set.
type Actual struct {
	Status    string
	Solution  *value.Map  // nil when the run printed no assignment
	Objective value.Value // nil when absent
	Output    *string     // raw output text; nil when not captured
	Error     *ActualError
}

// ActualError is a structured solver error.
type ActualError struct {
	Kind     string
	Message  string
	Location *Location
}

// Location points into the model that caused an error.
type Location struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	s := l.File
	if l.Line > 0 {
		s += fmt.Sprintf(":%d", l.Line)
		if l.Column > 0 {
			s += fmt.Sprintf(".%d", l.Column)
		}
	}
	return s
}

// Solved returns a solve outcome.
func Solved(status string, solution *value.Map) *Actual {
	return &Actual{Status: status, Solution: solution}
}

// Failed returns an error outcome.
func Failed(kind, message string) *Actual {
	return &Actual{Error: &ActualError{Kind: kind, Message: message}}
}

// IsError reports whether the run ended in an error.
func (a *Actual) IsError() bool { return a.Error != nil }

func (a *Actual) String() string {
	if a.Error != nil {
		s := a.Error.Kind
		if a.Error.Message != "" {
			s += ": " + a.Error.Message
		}
		if loc := a.Error.Location.String(); loc != "" {
			s += " (" + loc + ")"
		}
		return "error " + s
	}
	parts := []string{"status " + a.Status}
	if a.Solution != nil {
		parts = append(parts, "solution "+a.Solution.String())
	}
	if a.Objective != nil {
		parts = append(parts, "objective "+a.Objective.String())
	}
	return strings.Join(parts, ", ")
}

type actualJSON struct {
	Status    string         `json:"status"`
	Solution  map[string]any `json:"solution"`
	Objective any            `json:"objective"`
	Output    *string        `json:"output"`
	Error     *struct {
		Kind     string    `json:"kind"`
		Message  string    `json:"message"`
		Location *Location `json:"location"`
	} `json:"error"`
}

// DecodeActual decodes the JSON form of an actual outcome:
//
//	{"status": "...", "solution": {...}, "objective": ..., "output": "..."}
//	{"error": {"kind": "...", "message": "...", "location": {...}}}
//
// A solve outcome without a status is SATISFIED when it carries a
// solution and UNKNOWN otherwise.
func DecodeActual(data []byte) (*Actual, error) {
	if err := schema.ValidateActual(data); err != nil {
		return nil, oerrors.Wrap(err, "invalid actual outcome")
	}

	var raw actualJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, oerrors.Wrap(err, "invalid actual outcome")
	}

	if raw.Error != nil {
		return &Actual{Error: &ActualError{
			Kind:     raw.Error.Kind,
			Message:  raw.Error.Message,
			Location: raw.Error.Location,
		}}, nil
	}

	a := &Actual{Status: raw.Status, Output: raw.Output}
	if raw.Solution != nil {
		sol, err := value.MapFromAny(raw.Solution)
		if err != nil {
			return nil, oerrors.Wrap(err, "invalid actual solution")
		}
		a.Solution = sol
	}
	if raw.Objective != nil {
		obj, err := value.FromAny(raw.Objective)
		if err != nil {
			return nil, oerrors.Wrap(err, "invalid actual objective")
		}
		a.Objective = obj
	}
	if a.Status == "" {
		a.Status = StatusUnknown
		if a.Solution != nil {
			a.Status = StatusSatisfied
		}
	}
	return a, nil
}
