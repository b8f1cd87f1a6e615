// Package taxonomy normalizes source category labels.
package taxonomy

import "strings"

// Categories is an ordered list of normalized category labels. The first
// label is the primary category.
type Categories struct {
	labels []string
}

// Normalize lower-cases each label and replaces spaces with underscores.
// The primary label comes first, followed by the alternates in their
// original order. Empty or whitespace-only labels are skipped.
func Normalize(primary string, alternates []string) Categories {
	labels := make([]string, 0, len(alternates)+1)
	if label := normalizeLabel(primary); label != "" {
		labels = append(labels, label)
	}
	for _, alt := range alternates {
		if label := normalizeLabel(alt); label != "" {
			labels = append(labels, label)
		}
	}
	return Categories{labels: labels}
}

// NewCategories wraps already normalized labels.
func NewCategories(labels []string) Categories {
	c := make([]string, len(labels))
	copy(c, labels)
	return Categories{labels: c}
}

func normalizeLabel(label string) string {
	if strings.TrimSpace(label) == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// Labels returns a copy of the normalized labels.
func (c Categories) Labels() []string {
	labels := make([]string, len(c.labels))
	copy(labels, c.labels)
	return labels
}

// Primary returns the first label, or false if there is none.
func (c Categories) Primary() (string, bool) {
	if len(c.labels) == 0 {
		return "", false
	}
	return c.labels[0], true
}

// Len returns the number of labels.
func (c Categories) Len() int { return len(c.labels) }
