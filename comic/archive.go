package comic

import "strings"

// Section is a named group of pages sharing a tag.
type Section struct {
	Name  string
	Pages []Page
}

// ParseSections splits a comma separated list of section names.
func ParseSections(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Archive groups pages into one section per name, keeping page order.
// Tags are matched exactly. A page lands in every section it has a tag
// for, and in none if it has no matching tag.
func Archive(names []string, pages []Page) []Section {
	sections := make([]Section, 0, len(names))
	for _, name := range names {
		sec := Section{Name: name, Pages: []Page{}}
		for i := range pages {
			if pages[i].HasTag(name) {
				sec.Pages = append(sec.Pages, pages[i])
			}
		}
		sections = append(sections, sec)
	}
	return sections
}
