package importer

import (
	"encoding/json"
	"errors"
	"strings"

	"woodoctor/pkg/models"
)

// PreviewLimit caps how many records a parse preview returns. The total record
// count reported alongside a preview always reflects the full file.
const PreviewLimit = 10

var errMalformedXML = errors.New("malformed xml document")

// canonical fields whose values are coerced toward JSON arrays during parsing
var listFields = map[string]bool{
	"images":     true,
	"categories": true,
	"tags":       true,
}

// Parse reads raw file content and applies the source-to-canonical field
// mapping, returning one map per record keyed by canonical field name. A
// limit > 0 caps the returned records; the total is always the full record
// count. Source fields without a mapping are dropped.
func Parse(content string, fileType models.FileType, mappings map[string]string, limit int) ([]map[string]string, int, error) {
	switch fileType {
	case models.FileTypeCSV:
		records, total := parseCSV(content, mappings, limit)
		return records, total, nil
	case models.FileTypeXML:
		return parseXML(content, mappings, limit)
	}
	return nil, 0, nil
}

func parseCSV(content string, mappings map[string]string, limit int) ([]map[string]string, int) {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil, 0
	}

	headers := ParseDelimitedLine(lines[0])
	dataLines := lines[1:]
	total := len(dataLines)
	if limit > 0 && len(dataLines) > limit {
		dataLines = dataLines[:limit]
	}

	records := make([]map[string]string, 0, len(dataLines))
	for _, line := range dataLines {
		values := ParseDelimitedLine(line)
		record := make(map[string]string)
		for i, header := range headers {
			target, ok := mappings[header]
			if !ok || target == "" {
				continue
			}
			// a row shorter than the header has no value for this column
			if i >= len(values) {
				continue
			}
			record[target] = coerceListValue(target, values[i])
		}
		records = append(records, record)
	}
	return records, total
}

func parseXML(content string, mappings map[string]string, limit int) ([]map[string]string, int, error) {
	root, ok := parseXMLTree(content)
	if !ok {
		return nil, 0, errMalformedXML
	}

	var nodes []*xmlNode
	collectRecordNodes(root, &nodes)
	total := len(nodes)
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}

	records := make([]map[string]string, 0, len(nodes))
	for _, node := range nodes {
		record := make(map[string]string)
		for source, target := range mappings {
			if target == "" {
				continue
			}
			value, found := childText(node, source)
			if !found {
				continue
			}
			record[target] = coerceListValue(target, value)
		}
		records = append(records, record)
	}
	return records, total, nil
}

// coerceListValue normalizes multi-valued fields toward a serialized JSON
// array. A value that already is a JSON array is re-serialized; a
// comma-separated categories/tags value is split, trimmed and re-encoded.
// Anything else passes through untouched.
func coerceListValue(field, value string) string {
	if !listFields[field] || value == "" {
		return value
	}

	if parsed, ok := decodeJSONArray(value); ok {
		encoded, err := json.Marshal(parsed)
		if err == nil {
			return string(encoded)
		}
		return value
	}

	if field == "images" {
		return value
	}

	if strings.Contains(value, ",") {
		var parts []string
		for _, p := range strings.Split(value, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				parts = append(parts, p)
			}
		}
		encoded, err := json.Marshal(parts)
		if err == nil {
			return string(encoded)
		}
	}
	return value
}

func decodeJSONArray(value string) ([]string, bool) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var parsed []string
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}
