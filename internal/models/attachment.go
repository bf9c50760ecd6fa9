package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Assertion statuses inside a Result attachment
const (
	AssertionFailure = "failure"
	AssertionSuccess = "success"
)

// Text is a scalar that decodes from a JSON string, number or bool.
// Non-string values keep their JSON text; null decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(trimmed)
	return nil
}

// String returns the plain string value.
func (t Text) String() string {
	return string(t)
}

// CWE is the optional weakness classification on an assertion.
// A nil field means the key was absent (or null) in the attachment.
type CWE struct {
	Code    *Text `json:"code"`
	Summary *Text `json:"summary"`
}

// UnmarshalJSON decodes a cwe object. Any other value ("", [], 0, a bare
// string) carries no classification and decodes to an empty CWE.
func (c *CWE) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*c = CWE{}
		return nil
	}

	type plain CWE
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*c = CWE(p)
	return nil
}

// Assertion is one security check inside a test case result.
type Assertion struct {
	// ID is the key of the assertion in the attachment's assertions object.
	ID         string `json:"-"`
	Status     Text   `json:"status"`
	Risk       Text   `json:"risk"`
	Confidence Text   `json:"confidence"`
	Evidence   any    `json:"evidence"`
	Solution   Text   `json:"solution"`
	Reference  Text   `json:"reference"`
	CWE        *CWE   `json:"cwe"`
}

// Failed reports whether the assertion has failure status.
func (a Assertion) Failed() bool {
	return a.Status.String() == AssertionFailure
}

// Assertions preserves the order in which assertions appear in the attachment body.
type Assertions []Assertion

// UnmarshalJSON decodes a JSON object of id -> assertion, keeping key order.
func (a *Assertions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("assertions must be an object, got %v", tok)
	}

	var out Assertions
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected assertion key %v", keyTok)
		}

		var assertion Assertion
		if err := dec.Decode(&assertion); err != nil {
			return fmt.Errorf("assertion %q: %w", key, err)
		}
		assertion.ID = key
		out = append(out, assertion)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = out
	return nil
}

// AttachmentContent is the parsed JSON body of a "Result" attachment.
type AttachmentContent struct {
	Summary    Text       `json:"summary"`
	Assertions Assertions `json:"assertions"`
}

// ParseAttachmentContent decodes the content string of a Result attachment.
func ParseAttachmentContent(content string) (*AttachmentContent, error) {
	var doc AttachmentContent
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse attachment content: %w", err)
	}
	return &doc, nil
}
