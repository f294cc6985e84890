package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// envelopeKeys are the fields a wrapper may carry next to data
var envelopeKeys = map[string]bool{
	"data":       true,
	"status":     true,
	"success":    true,
	"message":    true,
	"msg":        true,
	"code":       true,
	"meta":       true,
	"pagination": true,
	"total":      true,
	"page":       true,
	"limit":      true,
}

// unwrapEnvelope returns the payload of a {status, data} envelope, or the body
// itself when it is bare. A nil payload means the upstream sent nothing.
func unwrapEnvelope(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return trimmed, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	data, hasData := env["data"]
	status, hasStatus := env["status"]
	if !hasStatus {
		status, hasStatus = env["success"]
	}
	if !hasData || (!hasStatus && !onlyEnvelopeKeys(env)) {
		return trimmed, nil
	}

	if hasStatus && !statusOK(status) {
		return nil, fmt.Errorf("upstream reported status %s", string(status))
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	return data, nil
}

// onlyEnvelopeKeys reports whether obj looks like a wrapper without a status,
// such as {"data": [...]} or {"data": [...], "meta": {...}}
func onlyEnvelopeKeys(obj map[string]json.RawMessage) bool {
	for k := range obj {
		if !envelopeKeys[k] {
			return false
		}
	}
	return true
}

// statusOK accepts true, 2xx numbers and any string other than a failure word
func statusOK(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch s := v.(type) {
	case bool:
		return s
	case float64:
		return s >= 200 && s < 300
	case string:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "error", "fail", "failed", "failure", "false":
			return false
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n >= 200 && n < 300
		}
		return true
	default:
		return false
	}
}

// isEmptyPayload reports whether payload is an empty array or object
func isEmptyPayload(payload json.RawMessage) bool {
	compact := bytes.Join(bytes.Fields(payload), nil)
	return len(compact) == 0 ||
		bytes.Equal(compact, []byte("[]")) ||
		bytes.Equal(compact, []byte("{}"))
}
