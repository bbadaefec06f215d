package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animedex/backend/internal/repository"
)

func TestSuggestionWeight(t *testing.T) {
	assert.Equal(t, 999, suggestionWeight(intPtr(1)))
	assert.Equal(t, 500, suggestionWeight(intPtr(500)))
	assert.Equal(t, 1, suggestionWeight(intPtr(999)))
	assert.Equal(t, 1, suggestionWeight(intPtr(2000)))
	assert.Equal(t, defaultSuggestionWeight, suggestionWeight(nil))
	assert.Equal(t, defaultSuggestionWeight, suggestionWeight(intPtr(0)))

	// A better (lower) popularity rank must never weigh less
	assert.Greater(t, suggestionWeight(intPtr(1)), suggestionWeight(intPtr(500)))
	assert.Greater(t, suggestionWeight(intPtr(500)), suggestionWeight(intPtr(2000)))
}

func TestSplitCommaName(t *testing.T) {
	last, first, ok := splitCommaName("Lamperouge, Lelouch")
	require.True(t, ok)
	assert.Equal(t, "Lamperouge", last)
	assert.Equal(t, "Lelouch", first)

	_, _, ok = splitCommaName("Pikachu")
	assert.False(t, ok)

	_, _, ok = splitCommaName("One, Two, Three")
	assert.False(t, ok)

	_, _, ok = splitCommaName("Dangling,")
	assert.False(t, ok)
}

func TestCharacterNameKeys(t *testing.T) {
	keys := characterNameKeys("Lamperouge, Lelouch")
	assert.Equal(t, []string{"Lamperouge, Lelouch", "Lelouch Lamperouge", "Lelouch", "Lamperouge"}, keys)

	keys = characterNameKeys("Pikachu")
	assert.Equal(t, []string{"Pikachu"}, keys)

	assert.Nil(t, characterNameKeys("  "))
}

func TestBuildAnimeSuggestion(t *testing.T) {
	seed := repository.SuggestionSeed{
		MalID:         1535,
		Title:         "Death Note",
		TitleEnglish:  strPtr("Death Note"),
		TitleSynonyms: []string{"DN", ""},
		Type:          strPtr("TV"),
		Score:         floatPtr(8.6),
		Popularity:    intPtr(2),
		TopCharacters: []string{"Yagami, Light", "L"},
	}

	doc := BuildAnimeSuggestion(seed)

	assert.Equal(t, "anime", doc.Type)
	assert.Equal(t, "anime_1535", doc.DocID())
	assert.Equal(t, "Death Note", doc.MainName)

	// Identical English title and empty synonyms dedupe away
	assert.Equal(t, []string{"Death Note", "DN"}, doc.SearchFullNames)

	// Title words come first, then expanded character names
	assert.Equal(t, []string{"Death", "Note", "Yagami, Light", "Light Yagami", "Light", "Yagami", "L"}, doc.SearchKeyNames)

	assert.Equal(t, 998, doc.Suggest.Weight)
	assert.Equal(t, []string{"anime", "tv", "global"}, doc.Suggest.Contexts["entity_type"])
	assert.Contains(t, doc.Suggest.Input, "Death Note")
	assert.Contains(t, doc.Suggest.Input, "Light Yagami")
}

func TestBuildAnimeSuggestionNoPopularity(t *testing.T) {
	doc := BuildAnimeSuggestion(repository.SuggestionSeed{MalID: 9, Title: "Obscure"})
	assert.Equal(t, defaultSuggestionWeight, doc.Suggest.Weight)
	assert.Equal(t, []string{"anime", "global"}, doc.Suggest.Contexts["entity_type"])
}

func TestBuildEntitySuggestion(t *testing.T) {
	doc := BuildEntitySuggestion("studio", repository.EntityRef{MalID: 4, Name: "Bones"})

	assert.Equal(t, "studio_4", doc.DocID())
	assert.Equal(t, "Bones", doc.MainName)
	assert.Equal(t, []string{"Bones"}, doc.SearchFullNames)
	assert.Empty(t, doc.SearchKeyNames)
	assert.Equal(t, 500, doc.Suggest.Weight)
	assert.Equal(t, []string{"studio", "global"}, doc.Suggest.Contexts["entity_type"])
}

func TestBuildEntitySuggestionMultiWord(t *testing.T) {
	doc := BuildEntitySuggestion("studio", repository.EntityRef{MalID: 21, Name: "Studio Ghibli"})

	assert.Equal(t, []string{"Studio Ghibli"}, doc.SearchFullNames)
	assert.Equal(t, []string{"Studio", "Ghibli"}, doc.SearchKeyNames)
	assert.Equal(t, []string{"Studio Ghibli", "Studio", "Ghibli"}, doc.Suggest.Input)
}

func TestNameTokens(t *testing.T) {
	assert.Nil(t, nameTokens("Bones"))
	assert.Equal(t, []string{"Cowboy", "Bebop"}, nameTokens("Cowboy Bebop"))
	assert.Equal(t, []string{"Yagami", "Light"}, nameTokens("Yagami, Light"))
}

func TestDedupeStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupeStrings([]string{"a", "b", "a", "", "b"}))
	assert.Empty(t, dedupeStrings(nil))
}
