package search

import (
	"fmt"
	"strings"

	"github.com/animedex/backend/internal/repository"
)

const defaultSuggestionWeight = 100

// CompletionField is the payload for the completion suggester
type CompletionField struct {
	Input    []string            `json:"input"`
	Weight   int                 `json:"weight"`
	Contexts map[string][]string `json:"contexts"`
}

// SuggestionDoc is one autocomplete entry. DocID dedupes entities that
// appear under multiple anime.
type SuggestionDoc struct {
	Type            string          `json:"type"`
	MalID           int             `json:"mal_id"`
	MainName        string          `json:"main_name"`
	SearchFullNames []string        `json:"search_full_names"`
	SearchKeyNames  []string        `json:"search_key_names"`
	Subtype         *string         `json:"subtype,omitempty"`
	Score           *float64        `json:"score,omitempty"`
	Popularity      *int            `json:"popularity,omitempty"`
	ImageURL        *string         `json:"image_url,omitempty"`
	Suggest         CompletionField `json:"suggest"`
}

// DocID is the stable identifier for this suggestion, "{type}_{mal_id}"
func (d SuggestionDoc) DocID() string {
	return fmt.Sprintf("%s_%d", d.Type, d.MalID)
}

// BuildAnimeSuggestion turns a suggestion seed into an autocomplete entry.
// All title variants plus the top characters' name keys become completion
// inputs, weighted by popularity rank.
func BuildAnimeSuggestion(seed repository.SuggestionSeed) SuggestionDoc {
	fullNames := []string{seed.Title}
	if seed.TitleEnglish != nil && *seed.TitleEnglish != "" && *seed.TitleEnglish != seed.Title {
		fullNames = append(fullNames, *seed.TitleEnglish)
	}
	for _, syn := range seed.TitleSynonyms {
		if syn != "" {
			fullNames = append(fullNames, syn)
		}
	}

	// Key names carry the partial-match surface: individual title words plus
	// expanded character names
	keyNames := make([]string, 0, len(fullNames)+len(seed.TopCharacters)*2)
	for _, name := range fullNames {
		keyNames = append(keyNames, nameTokens(name)...)
	}
	for _, name := range seed.TopCharacters {
		keyNames = append(keyNames, characterNameKeys(name)...)
	}

	doc := SuggestionDoc{
		Type:            "anime",
		MalID:           seed.MalID,
		MainName:        seed.Title,
		SearchFullNames: dedupeStrings(fullNames),
		SearchKeyNames:  dedupeStrings(keyNames),
		Subtype:         seed.Type,
		Score:           seed.Score,
		Popularity:      seed.Popularity,
		ImageURL:        seed.ImageURL,
	}

	inputs := append([]string{}, doc.SearchFullNames...)
	inputs = append(inputs, doc.SearchKeyNames...)

	doc.Suggest = CompletionField{
		Input:    dedupeStrings(inputs),
		Weight:   suggestionWeight(seed.Popularity),
		Contexts: map[string][]string{"entity_type": suggestionContexts("anime", seed.Type)},
	}
	return doc
}

// BuildEntitySuggestion builds an autocomplete entry for a studio, genre,
// theme or demographic. Entities carry no popularity signal so they sit
// between obscure and popular anime.
func BuildEntitySuggestion(kind string, ref repository.EntityRef) SuggestionDoc {
	doc := SuggestionDoc{
		Type:            kind,
		MalID:           ref.MalID,
		MainName:        ref.Name,
		SearchFullNames: []string{ref.Name},
		SearchKeyNames:  dedupeStrings(nameTokens(ref.Name)),
	}
	doc.Suggest = CompletionField{
		Input:    dedupeStrings(append([]string{ref.Name}, doc.SearchKeyNames...)),
		Weight:   500,
		Contexts: map[string][]string{"entity_type": suggestionContexts(kind, nil)},
	}
	return doc
}

// suggestionWeight maps popularity rank to completion weight: rank 1 is
// the heaviest, anything past 999 bottoms out at 1, missing rank gets a
// neutral default.
func suggestionWeight(popularity *int) int {
	if popularity == nil || *popularity <= 0 {
		return defaultSuggestionWeight
	}
	p := *popularity
	if p > 999 {
		p = 999
	}
	return 1000 - p
}

func suggestionContexts(kind string, subtype *string) []string {
	contexts := []string{kind}
	if subtype != nil && *subtype != "" {
		contexts = append(contexts, strings.ToLower(*subtype))
	}
	return append(contexts, "global")
}

// characterNameKeys expands a character name into searchable variants.
// Catalog names follow the "Last, First" convention, so "Lamperouge,
// Lelouch" yields the original, "Lelouch Lamperouge", and both parts as
// standalone keys. Names without a comma pass through as-is.
func characterNameKeys(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	last, first, ok := splitCommaName(name)
	if !ok {
		return []string{name}
	}
	return []string{name, first + " " + last, first, last}
}

// nameTokens returns the individual words of a multi-word name. Single-word
// and one-character tokens add nothing over the full name.
func nameTokens(name string) []string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return nil
	}
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",:;")
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// splitCommaName splits a single "Last, First" name. Multiple commas mean
// the convention does not apply.
func splitCommaName(name string) (last, first string, ok bool) {
	if strings.Count(name, ",") != 1 {
		return "", "", false
	}
	parts := strings.SplitN(name, ",", 2)
	last = strings.TrimSpace(parts[0])
	first = strings.TrimSpace(parts[1])
	if last == "" || first == "" {
		return "", "", false
	}
	return last, first, true
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
