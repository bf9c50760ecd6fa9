package collector

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/levovulns/internal/models"
)

// attachmentField is the root field of the attachment query in a saved GraphQL response.
const attachmentField = "aiLevoApitestingRunsV1ApiTestRunsServiceGetCaseAttachment"

// ParseAttachmentFile reads a saved attachment from disk. See ParseAttachment for accepted shapes.
func ParseAttachmentFile(path string) (*models.AttachmentContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseAttachment(data)
}

// ParseAttachment accepts the attachment content document itself, an attachment
// object ({"content": "...", "contentType": ...}), or a whole GraphQL response
// for the attachment query.
func ParseAttachment(data []byte) (*models.AttachmentContent, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("failed to parse attachment: %w", err)
	}
	if top == nil {
		return nil, fmt.Errorf("attachment is not a JSON object")
	}

	if _, ok := top["assertions"]; ok {
		return models.ParseAttachmentContent(string(data))
	}

	if raw, ok := top["content"]; ok {
		return parseContentField(raw)
	}

	if raw, ok := top["data"]; ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("failed to parse response data: %w", err)
		}
		att, ok := fields[attachmentField]
		if !ok {
			return nil, fmt.Errorf("response has no %s", attachmentField)
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(att, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("response has no attachment")
		}
		return parseContentField(obj["content"])
	}

	return nil, fmt.Errorf("unrecognized attachment format: expected assertions, content or data")
}

// parseContentField decodes the "content" member, a JSON document encoded as a string.
func parseContentField(raw json.RawMessage) (*models.AttachmentContent, error) {
	var content string
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("attachment content must be a string: %w", err)
	}
	if content == "" {
		return nil, fmt.Errorf("attachment content is empty")
	}
	return models.ParseAttachmentContent(content)
}
