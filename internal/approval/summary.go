package approval

import (
	"encoding/json"
	"fmt"
)

// summaryFields maps known tool names to the input field whose value
// summarizes the call. Tools absent from the table fall back to a
// rendering of the whole input.
var summaryFields = map[string]string{
	"bash":  "command",
	"read":  "path",
	"write": "path",
	"edit":  "path",
}

// summarize renders a one-line description of a tool call for the
// confirmation prompt. Known tools show their designated field as
// "<field>: <value>"; a missing or non-string field shows
// "missing <field>". Unknown tools show the whole input as indented
// JSON with stable key order.
func summarize(tool string, input map[string]any) string {
	field, known := summaryFields[tool]
	if !known {
		data, err := json.MarshalIndent(input, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", input)
		}
		return string(data)
	}

	value, ok := input[field].(string)
	if !ok {
		return "missing " + field
	}
	return field + ": " + value
}
