// Package actions implements the short-key wire format the kernel expects
// an LLM completion to be shaped as: one JSON object, or an array of them,
// using the keys "t" (thought), "a" (tool name), "i" (tool input) and "f"
// (final answer). Parsing is tolerant of the surrounding prose and fenced
// code blocks real models tend to wrap JSON in, but strict about the
// object shape once isolated.
package actions

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates what an Action asks the kernel to do next.
type Kind int

const (
	// KindToolCall means Tool/Input are set and a CallTool intent should
	// be produced.
	KindToolCall Kind = iota
	// KindFinal means Final is set and an EmitResponse intent should be
	// produced, ending the step.
	KindFinal
)

// Action is one parsed element of an LLM completion.
type Action struct {
	Kind    Kind
	Thought string
	Tool    string
	Input   string
	Final   string

	// DroppedFinal records that both "a" and "f" were present; per the
	// wire format's precedence rule, "a" wins and "f" is discarded. The
	// caller should log a warning using this value.
	DroppedFinal string
}

// wireAction is the raw short-key JSON shape.
type wireAction struct {
	Thought string          `json:"t"`
	Tool    string          `json:"a"`
	Input   json.RawMessage `json:"i"`
	Final   string          `json:"f"`
}

// ParseError reports a malformed action payload. The kernel counts these
// towards its consecutive-parse-failure threshold.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "action parse: " + e.Reason }

// Parse extracts one or more Actions from a raw LLM completion. It strips a
// single surrounding fenced code block (``` or ```json) if present, skips
// any text before the first '{' or '[', then decodes the first JSON value
// there (a single object or an array of objects), ignoring anything after
// it.
func Parse(raw string) ([]Action, error) {
	body := unfence(raw)
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ParseError{Reason: "empty completion"}
	}
	start := strings.IndexAny(body, "[{")
	if start < 0 {
		return nil, &ParseError{Reason: "completion is not a JSON object or array"}
	}
	body = body[start:]
	dec := json.NewDecoder(strings.NewReader(body))

	var rawActions []wireAction
	switch body[0] {
	case '[':
		if err := dec.Decode(&rawActions); err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("invalid action array: %v", err)}
		}
	case '{':
		var single wireAction
		if err := dec.Decode(&single); err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("invalid action object: %v", err)}
		}
		rawActions = []wireAction{single}
	}

	if len(rawActions) == 0 {
		return nil, &ParseError{Reason: "empty action array"}
	}

	actions := make([]Action, 0, len(rawActions))
	for _, ra := range rawActions {
		action, err := fromWire(ra)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func fromWire(ra wireAction) (Action, error) {
	hasTool := ra.Tool != ""
	hasInput := len(ra.Input) > 0 && string(ra.Input) != "null"
	hasFinal := ra.Final != ""

	switch {
	case hasTool && !hasInput:
		return Action{}, &ParseError{Reason: fmt.Sprintf("tool %q given without input", ra.Tool)}
	case hasTool:
		action := Action{
			Kind:    KindToolCall,
			Thought: ra.Thought,
			Tool:    ra.Tool,
			Input:   string(ra.Input),
		}
		if hasFinal {
			// "a" wins; "f" is dropped but recorded for a warning log.
			action.DroppedFinal = ra.Final
		}
		return action, nil
	case hasFinal:
		return Action{Kind: KindFinal, Thought: ra.Thought, Final: ra.Final}, nil
	default:
		return Action{}, &ParseError{Reason: "neither tool call (\"a\") nor final answer (\"f\") present"}
	}
}

// unfence strips a single leading/trailing fenced code block, if the raw
// text is wrapped in one (```json ... ``` or ``` ... ```), returning the
// inner text untouched otherwise.
func unfence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		return trimmed
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
