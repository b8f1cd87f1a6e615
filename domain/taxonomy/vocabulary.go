package taxonomy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyVocabulary indicates a vocabulary file listed no categories.
var ErrEmptyVocabulary = errors.New("vocabulary has no categories")

// restaurantCategories are the source category names treated as food and
// beverage establishments.
var restaurantCategories = []string{
	"restaurant",
	"cafe",
	"coffee_shop",
	"bar",
	"pub",
	"brewery",
	"bakery",
	"food_truck",
	"fast_food_restaurant",
	"pizza_restaurant",
	"italian_restaurant",
	"mexican_restaurant",
	"chinese_restaurant",
	"japanese_restaurant",
	"thai_restaurant",
	"indian_restaurant",
	"vietnamese_restaurant",
	"korean_restaurant",
	"french_restaurant",
	"greek_restaurant",
	"mediterranean_restaurant",
	"american_restaurant",
	"steakhouse",
	"seafood_restaurant",
	"bbq_restaurant",
	"burger_restaurant",
	"sushi_restaurant",
	"vegetarian_restaurant",
	"vegan_restaurant",
	"diner",
	"buffet_restaurant",
	"food_court",
	"ice_cream_shop",
	"dessert_shop",
	"juice_bar",
	"tea_house",
	"wine_bar",
}

// Vocabulary is the allow-list of category names used to select places.
type Vocabulary struct {
	names []string
}

// DefaultVocabulary returns the built-in restaurant vocabulary.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(restaurantCategories)
}

// NewVocabulary creates a Vocabulary, lower-casing names and dropping blanks
// and duplicates.
func NewVocabulary(names []string) Vocabulary {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return Vocabulary{names: out}
}

// Names returns a copy of the vocabulary entries.
func (v Vocabulary) Names() []string {
	names := make([]string, len(v.names))
	copy(names, v.names)
	return names
}

// Len returns the number of entries.
func (v Vocabulary) Len() int { return len(v.names) }

type vocabularyFile struct {
	Categories []string `yaml:"categories"`
}

// LoadVocabulary reads a YAML file with a top-level "categories" list.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary parses YAML vocabulary content.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var f vocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	v := NewVocabulary(f.Categories)
	if v.Len() == 0 {
		return Vocabulary{}, ErrEmptyVocabulary
	}
	return v, nil
}
