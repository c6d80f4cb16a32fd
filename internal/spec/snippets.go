package spec

// SnippetTable builds a name-to-content lookup from the document's snippet
// list. The table is exposed to command templates under the reserved
// "snippet" namespace.
func SnippetTable(snippets []Snippet) (map[string]string, error) {
	table := make(map[string]string, len(snippets))
	for _, s := range snippets {
		if _, exists := table[s.Name]; exists {
			return nil, &DuplicateSnippetError{Name: s.Name}
		}
		table[s.Name] = s.Content
	}
	return table, nil
}
