package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animedex/backend/internal/models"
	"github.com/animedex/backend/internal/repository"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestExtractDurationMinutes(t *testing.T) {
	tests := []struct {
		input    string
		expected *int
	}{
		{"24 min per ep", intPtr(24)},
		{"23 min", intPtr(23)},
		{"1 hr 30 min", intPtr(90)},
		{"2 hr 5 min", intPtr(125)},
		{"1.5 hr", intPtr(90)},
		{"2 hr", intPtr(120)},
		{"45 sec", intPtr(1)},
		{"20 sec", intPtr(0)},
		{"2 cour", intPtr(576)},
		{"45", intPtr(45)},
		{"approx. 12 per episode", intPtr(12)},
		{"Unknown", nil},
		{"", nil},
		{"   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ExtractDurationMinutes(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}

func TestScoreRange(t *testing.T) {
	assert.Equal(t, "unknown", scoreRange(nil))
	assert.Equal(t, "9+", scoreRange(floatPtr(9.0)))
	assert.Equal(t, "9+", scoreRange(floatPtr(9.8)))
	assert.Equal(t, "8-9", scoreRange(floatPtr(8.99)))
	assert.Equal(t, "7-8", scoreRange(floatPtr(7.0)))
	assert.Equal(t, "6-7", scoreRange(floatPtr(6.5)))
	assert.Equal(t, "0-6", scoreRange(floatPtr(5.99)))
	assert.Equal(t, "0-6", scoreRange(floatPtr(0)))
}

func TestEpisodeRange(t *testing.T) {
	assert.Equal(t, "unknown", episodeRange(nil))
	assert.Equal(t, "unknown", episodeRange(intPtr(0)))
	assert.Equal(t, "unknown", episodeRange(intPtr(-3)))
	assert.Equal(t, "movie", episodeRange(intPtr(1)))
	assert.Equal(t, "short", episodeRange(intPtr(2)))
	assert.Equal(t, "short", episodeRange(intPtr(12)))
	assert.Equal(t, "medium", episodeRange(intPtr(13)))
	assert.Equal(t, "medium", episodeRange(intPtr(24)))
	assert.Equal(t, "long", episodeRange(intPtr(25)))
}

func TestBuildAnimeDocIsPopular(t *testing.T) {
	row := repository.AnimeRow{Anime: models.Anime{MalID: 1, Title: "A"}}

	assert.False(t, BuildAnimeDoc(row).IsPopular)

	row.Popularity = intPtr(0)
	assert.False(t, BuildAnimeDoc(row).IsPopular)

	row.Popularity = intPtr(1)
	assert.True(t, BuildAnimeDoc(row).IsPopular)

	row.Popularity = intPtr(1000)
	assert.True(t, BuildAnimeDoc(row).IsPopular)

	row.Popularity = intPtr(1001)
	assert.False(t, BuildAnimeDoc(row).IsPopular)
}

func TestBuildAnimeDocSeasonYearFallback(t *testing.T) {
	tests := []struct {
		name   string
		aired  string
		season string
		year   int
	}{
		{"spring", "Apr 3, 2016 to Jun 26, 2016", "spring", 2016},
		{"winter december", "Dec 25, 1999", "winter", 1999},
		{"winter january", "Jan 10, 2021 to ?", "winter", 2021},
		{"summer", "Jul 7, 2007", "summer", 2007},
		{"autumn", "Oct 4, 2011 to Mar 27, 2012", "autumn", 2011},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := repository.AnimeRow{Anime: models.Anime{
				MalID:       1,
				Title:       "A",
				AiredString: strPtr(tt.aired),
			}}
			doc := BuildAnimeDoc(row)
			require.NotNil(t, doc.Season)
			require.NotNil(t, doc.Year)
			assert.Equal(t, tt.season, *doc.Season)
			assert.Equal(t, tt.year, *doc.Year)
		})
	}
}

func TestBuildAnimeDocKeepsExplicitSeasonYear(t *testing.T) {
	row := repository.AnimeRow{Anime: models.Anime{
		MalID:       1,
		Title:       "A",
		Season:      strPtr("fall"),
		Year:        intPtr(2020),
		AiredString: strPtr("Apr 3, 2016 to Jun 26, 2016"),
	}}

	doc := BuildAnimeDoc(row)
	assert.Equal(t, "fall", *doc.Season)
	assert.Equal(t, 2020, *doc.Year)
}

func TestBuildAnimeDocUnparseableAired(t *testing.T) {
	row := repository.AnimeRow{Anime: models.Anime{
		MalID:       1,
		Title:       "A",
		AiredString: strPtr("Not available"),
	}}

	doc := BuildAnimeDoc(row)
	assert.Nil(t, doc.Season)
	assert.Nil(t, doc.Year)
}

func TestBuildAnimeDocFlatNamesMatchNested(t *testing.T) {
	row := repository.AnimeRow{
		Anime: models.Anime{MalID: 5, Title: "B"},
		Studios: []repository.EntityRef{
			{MalID: 10, Name: "Bones"},
			{MalID: 11, Name: "Madhouse"},
		},
		Genres: []repository.EntityRef{{MalID: 20, Name: "Action"}},
		Characters: []repository.CharacterRow{
			{MalID: 30, Name: "Lamperouge, Lelouch", Role: "Main"},
			{MalID: 31, Name: "Kururugi, Suzaku", Role: "Main"},
		},
	}

	doc := BuildAnimeDoc(row)

	require.Len(t, doc.Studios, 2)
	assert.Equal(t, []string{"Bones", "Madhouse"}, doc.StudioNames)
	assert.Equal(t, []string{"Action"}, doc.GenreNames)
	assert.Equal(t, []string{"Lamperouge, Lelouch", "Kururugi, Suzaku"}, doc.CharacterNames)
	assert.Empty(t, doc.ThemeNames)
	assert.Empty(t, doc.DemographicNames)
}

func TestBuildAnimeDocEmptyCollections(t *testing.T) {
	doc := BuildAnimeDoc(repository.AnimeRow{Anime: models.Anime{MalID: 1, Title: "A"}})

	assert.NotNil(t, doc.TitleSynonyms)
	assert.NotNil(t, doc.Studios)
	assert.NotNil(t, doc.Characters)
	assert.NotNil(t, doc.CharacterNames)
	assert.Equal(t, "unknown", doc.ScoreRange)
	assert.Equal(t, "unknown", doc.EpisodeRange)
}
