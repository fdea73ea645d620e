package importer

import "strings"

// normalizeFieldName lowers a field name and strips separator characters so
// "Product_Type", "product-type" and "productType" compare equal.
func normalizeFieldName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, "-", "")
	return name
}

// AutoMap proposes a source-to-canonical field mapping. Existing mappings are
// kept; an exact normalized-name match replaces them, a substring match only
// fills gaps. Type-like source fields always map to "type" because feeds name
// that column inconsistently.
func AutoMap(detected []string, canonical []string, existing map[string]string) map[string]string {
	result := make(map[string]string, len(existing)+len(detected))
	for k, v := range existing {
		result[k] = v
	}

	for _, field := range detected {
		norm := normalizeFieldName(field)

		if norm == "type" || norm == "producttype" {
			result[field] = "type"
			continue
		}

		exact := ""
		substring := ""
		for _, target := range canonical {
			targetNorm := normalizeFieldName(target)
			if norm == targetNorm {
				exact = target
				break
			}
			if substring == "" && (strings.Contains(norm, targetNorm) || strings.Contains(targetNorm, norm)) {
				substring = target
			}
		}

		switch {
		case exact != "":
			result[field] = exact
		case substring != "" && result[field] == "":
			result[field] = substring
		}
	}
	return result
}
