package importer

import (
	"encoding/xml"
	"strings"

	"woodoctor/pkg/models"
)

// recordElement is the element name the XML path treats as one product record.
const recordElement = "product"

// xmlNode is a generic element tree used by field detection and parsing.
type xmlNode struct {
	XMLName  xml.Name
	Children []xmlNode `xml:",any"`
	Content  string    `xml:",chardata"`
}

// ParseDelimitedLine splits one CSV line into values. Quotes toggle an
// "inside quoted field" mode so a field may contain the delimiter; doubled
// quotes are not treated as an escape. Values are trimmed and surrounding
// quotes stripped.
func ParseDelimitedLine(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	result = append(result, current.String())

	for i, v := range result {
		v = strings.TrimSpace(v)
		v = strings.TrimPrefix(v, `"`)
		v = strings.TrimSuffix(v, `"`)
		result[i] = strings.TrimSpace(v)
	}
	return result
}

// DetectFields inspects raw file content and returns the source field names
// in first-seen order. Empty or malformed input yields an empty list; the
// caller must treat that as "nothing detected".
func DetectFields(content string, fileType models.FileType) []string {
	switch fileType {
	case models.FileTypeCSV:
		return detectCSVFields(content)
	case models.FileTypeXML:
		return detectXMLFields(content)
	}
	return nil
}

func detectCSVFields(content string) []string {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		return ParseDelimitedLine(line)
	}
	return nil
}

func detectXMLFields(content string) []string {
	root, ok := parseXMLTree(content)
	if !ok {
		return nil
	}

	record := findRecordNode(root)
	if record == nil {
		return nil
	}

	var fields []string
	seen := make(map[string]bool)
	for _, child := range record.Children {
		name := child.XMLName.Local
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	return fields
}

func parseXMLTree(content string) (*xmlNode, bool) {
	var root xmlNode
	if err := xml.Unmarshal([]byte(content), &root); err != nil {
		return nil, false
	}
	return &root, true
}

// findRecordNode locates the first record element in the tree, falling back
// to the first child of the root when no element carries the record name.
func findRecordNode(root *xmlNode) *xmlNode {
	if n := findByName(root, recordElement); n != nil {
		return n
	}
	if len(root.Children) > 0 {
		return &root.Children[0]
	}
	return nil
}

func findByName(node *xmlNode, name string) *xmlNode {
	if node.XMLName.Local == name {
		return node
	}
	for i := range node.Children {
		if n := findByName(&node.Children[i], name); n != nil {
			return n
		}
	}
	return nil
}

// collectRecordNodes gathers every record element in document order. When the
// document has no element with the record name, the children of the root are
// not treated as records; the file simply yields nothing.
func collectRecordNodes(node *xmlNode, out *[]*xmlNode) {
	if node.XMLName.Local == recordElement {
		*out = append(*out, node)
		return
	}
	for i := range node.Children {
		collectRecordNodes(&node.Children[i], out)
	}
}

// childText returns the text content of the first child element with the
// given name.
func childText(node *xmlNode, name string) (string, bool) {
	for i := range node.Children {
		if node.Children[i].XMLName.Local == name {
			return strings.TrimSpace(node.Children[i].Content), true
		}
	}
	return "", false
}
