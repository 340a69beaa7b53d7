package gateway

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CurlGet renders an equivalent curl command for a GET probe so operators
// can replay it by hand. Content-Type is omitted since GETs carry no body.
// authHeader names the header carrying the credential; its value and any
// api-key or Authorization header are replaced with placeholders so the
// command is safe to paste into tickets and chat.
func CurlGet(url string, headers map[string]string, authHeader string) string {
	parts := []string{fmt.Sprintf("curl -X GET %q", url)}
	for _, k := range sortedKeys(headers) {
		if strings.EqualFold(k, "Content-Type") {
			continue
		}
		parts = append(parts, fmt.Sprintf("-H %q", k+": "+redactValue(k, headers[k], authHeader)))
	}
	return strings.Join(parts, " \\\n  ")
}

// CurlPost renders an equivalent curl command for a JSON POST probe, with
// credential headers redacted the same way as CurlGet.
func CurlPost(url string, headers map[string]string, body any, authHeader string) string {
	parts := []string{fmt.Sprintf("curl -X POST %q", url)}
	for _, k := range sortedKeys(headers) {
		parts = append(parts, fmt.Sprintf("-H %q", k+": "+redactValue(k, headers[k], authHeader)))
	}
	payload, err := json.MarshalIndent(body, "", "  ")
	if err == nil {
		parts = append(parts, "-d '"+string(payload)+"'")
	}
	return strings.Join(parts, " \\\n  ")
}

// redactValue substitutes placeholders for credential header values.
func redactValue(name, value, authHeader string) string {
	switch {
	case strings.EqualFold(name, "Authorization"):
		return "Bearer YOUR_TOKEN"
	case strings.EqualFold(name, defaultAPIKeyHeader):
		return "YOUR_API_KEY"
	case authHeader != "" && strings.EqualFold(name, authHeader):
		return "YOUR_API_KEY"
	}
	return value
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
