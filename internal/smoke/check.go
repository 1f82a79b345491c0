package smoke

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

var okValues = map[string]bool{
	"ok":      true,
	"success": true,
	"healthy": true,
	"alive":   true,
	"up":      true,
	"pass":    true,
	"true":    true,
}

// evaluate decides whether a response counts as a success: a 2xx status and
// a JSON body whose status or success field is truthy.
func evaluate(statusCode int, body []byte) (bool, string) {
	if statusCode < 200 || statusCode > 299 {
		return false, fmt.Sprintf("unexpected HTTP status %d", statusCode)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return false, "response body is not valid JSON"
	}

	var seen []string
	for _, expr := range []string{"$.status", "$.success"} {
		val, err := jsonpath.Get(expr, doc)
		if err != nil {
			continue
		}
		if truthy(val) {
			return true, fmt.Sprintf("%s=%v", strings.TrimPrefix(expr, "$."), val)
		}
		seen = append(seen, fmt.Sprintf("%s=%v", strings.TrimPrefix(expr, "$."), val))
	}

	if len(seen) == 0 {
		return false, "response has no status or success field"
	}

	return false, strings.Join(seen, ", ")
}

func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return okValues[strings.ToLower(strings.TrimSpace(val))]
	default:
		return false
	}
}
