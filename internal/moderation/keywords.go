package moderation

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed keywords.toml
var keywordsTOML []byte

// phraseContext is how many tokens on each side of a matched keyword are
// included in the reported phrase.
const phraseContext = 3

// Taxonomy is the fixed keyword-to-category dictionary backing the degraded
// classification path.
type Taxonomy struct {
	Categories []TaxonomyCategory `toml:"categories"`
}

type TaxonomyCategory struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

// LoadTaxonomy decodes the embedded keyword taxonomy.
func LoadTaxonomy() (*Taxonomy, error) {
	var t Taxonomy
	if err := toml.Unmarshal(keywordsTOML, &t); err != nil {
		return nil, fmt.Errorf("moderation: decoding keyword taxonomy: %w", err)
	}
	return &t, nil
}

// CategoryNames returns the taxonomy's category list, in file order.
func (t *Taxonomy) CategoryNames() []string {
	names := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		names = append(names, c.Name)
	}
	return names
}

// ExtractPhrases finds taxonomy keywords in text and returns each match with
// up to phraseContext tokens of surrounding context, deduplicated. Matching
// is case-insensitive with basic punctuation stripped; the returned phrase
// preserves the original tokens.
func (t *Taxonomy) ExtractPhrases(text string, categories []string) []string {
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[strings.ToLower(c)] = true
	}

	keywords := make(map[string]bool)
	for _, c := range t.Categories {
		if len(wanted) > 0 && !wanted[strings.ToLower(c.Name)] {
			continue
		}
		for _, k := range c.Keywords {
			keywords[strings.ToLower(k)] = true
		}
	}

	tokens := strings.Fields(text)
	seen := make(map[string]bool)
	phrases := []string{}

	for i, tok := range tokens {
		if !keywords[normalizeToken(tok)] {
			continue
		}
		lo := max(0, i-phraseContext)
		hi := min(len(tokens), i+phraseContext+1)
		phrase := strings.Join(tokens[lo:hi], " ")
		if seen[phrase] {
			continue
		}
		seen[phrase] = true
		phrases = append(phrases, phrase)
	}

	return phrases
}

func normalizeToken(tok string) string {
	return strings.ToLower(strings.Trim(tok, ".,;:!?'\"()[]"))
}
