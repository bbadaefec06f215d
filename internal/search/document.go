package search

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/animedex/backend/internal/repository"
)

// EntityDoc is a named entity embedded in an anime document
type EntityDoc struct {
	MalID int    `json:"mal_id"`
	Name  string `json:"name"`
}

// VoiceActorDoc is a voice actor embedded in a character entry
type VoiceActorDoc struct {
	MalID    int     `json:"mal_id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
}

// CharacterDoc is one of an anime's top characters, ordered by favorites
type CharacterDoc struct {
	MalID       int             `json:"mal_id"`
	Name        string          `json:"name"`
	Role        string          `json:"role"`
	Favorites   *int            `json:"favorites"`
	ImageURL    *string         `json:"image_url"`
	VoiceActors []VoiceActorDoc `json:"voice_actors"`
}

// AnimeDoc is one indexed anime document, keyed by MAL ID
type AnimeDoc struct {
	MalID         int      `json:"mal_id"`
	Title         string   `json:"title"`
	TitleEnglish  *string  `json:"title_english"`
	TitleJapanese *string  `json:"title_japanese"`
	TitleSynonyms []string `json:"title_synonyms"`
	Synopsis      string   `json:"synopsis"`

	Type   *string `json:"type"`
	Source *string `json:"source"`
	Status *string `json:"status"`
	Rating *string `json:"rating"`

	Score           *float64 `json:"score"`
	Popularity      *int     `json:"popularity"`
	Episodes        *int     `json:"episodes"`
	Duration        *string  `json:"duration"`
	DurationMinutes *int     `json:"duration_minutes"`

	Season      *string `json:"season"`
	Year        *int    `json:"year"`
	AiredString *string `json:"aired_string"`

	ImageURL   *string `json:"image_url"`
	TrailerURL *string `json:"trailer_url"`

	Studios      []EntityDoc    `json:"studios"`
	Genres       []EntityDoc    `json:"genres"`
	Themes       []EntityDoc    `json:"themes"`
	Demographics []EntityDoc    `json:"demographics"`
	Characters   []CharacterDoc `json:"characters"`

	// Flat arrays duplicating the nested collections, for exact-match
	// filtering. Consistency is enforced here at mapping time only.
	StudioNames      []string `json:"studio_names"`
	GenreNames       []string `json:"genre_names"`
	ThemeNames       []string `json:"theme_names"`
	DemographicNames []string `json:"demographic_names"`
	CharacterNames   []string `json:"character_names"`

	IsPopular    bool   `json:"is_popular"`
	ScoreRange   string `json:"score_range"`
	EpisodeRange string `json:"episode_range"`
}

// BuildAnimeDoc transforms one denormalized catalog row into a search
// document. Pure transform: malformed inputs degrade to nil fields.
func BuildAnimeDoc(row repository.AnimeRow) AnimeDoc {
	doc := AnimeDoc{
		MalID:         row.MalID,
		Title:         row.Title,
		TitleEnglish:  row.TitleEnglish,
		TitleJapanese: row.TitleJapanese,
		TitleSynonyms: row.TitleSynonyms,
		Synopsis:      row.Synopsis,
		Type:          row.Type,
		Source:        row.Source,
		Status:        row.Status,
		Rating:        row.Rating,
		Score:         row.Score,
		Popularity:    row.Popularity,
		Episodes:      row.Episodes,
		Duration:      row.Duration,
		Season:        row.Season,
		Year:          row.Year,
		AiredString:   row.AiredString,
		ImageURL:      row.ImageURL,
		TrailerURL:    row.TrailerURL,
	}

	if doc.TitleSynonyms == nil {
		doc.TitleSynonyms = []string{}
	}

	if row.Duration != nil {
		doc.DurationMinutes = ExtractDurationMinutes(*row.Duration)
	}

	doc.IsPopular = row.Popularity != nil && *row.Popularity > 0 && *row.Popularity <= 1000
	doc.ScoreRange = scoreRange(row.Score)
	doc.EpisodeRange = episodeRange(row.Episodes)

	// Season/year fall back to the aired-date string only when the catalog
	// row carries neither
	if doc.Season == nil || doc.Year == nil {
		if year, season, ok := extractYearSeason(row.AiredString); ok {
			if doc.Season == nil || *doc.Season == "" {
				doc.Season = &season
			}
			if doc.Year == nil {
				doc.Year = &year
			}
		}
	}

	doc.Studios = entityDocs(row.Studios)
	doc.Genres = entityDocs(row.Genres)
	doc.Themes = entityDocs(row.Themes)
	doc.Demographics = entityDocs(row.Demographics)

	doc.Characters = make([]CharacterDoc, 0, len(row.Characters))
	doc.CharacterNames = make([]string, 0, len(row.Characters))
	for _, c := range row.Characters {
		vas := make([]VoiceActorDoc, 0, len(c.VoiceActors))
		for _, va := range c.VoiceActors {
			vas = append(vas, VoiceActorDoc{MalID: va.MalID, Name: va.Name, ImageURL: va.ImageURL})
		}
		doc.Characters = append(doc.Characters, CharacterDoc{
			MalID:       c.MalID,
			Name:        c.Name,
			Role:        c.Role,
			Favorites:   c.Favorites,
			ImageURL:    c.ImageURL,
			VoiceActors: vas,
		})
		doc.CharacterNames = append(doc.CharacterNames, c.Name)
	}

	doc.StudioNames = entityNames(row.Studios)
	doc.GenreNames = entityNames(row.Genres)
	doc.ThemeNames = entityNames(row.Themes)
	doc.DemographicNames = entityNames(row.Demographics)

	return doc
}

func entityDocs(refs []repository.EntityRef) []EntityDoc {
	docs := make([]EntityDoc, 0, len(refs))
	for _, ref := range refs {
		docs = append(docs, EntityDoc{MalID: ref.MalID, Name: ref.Name})
	}
	return docs
}

func entityNames(refs []repository.EntityRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return names
}

// scoreRange buckets a score into half-open intervals [x, next)
func scoreRange(score *float64) string {
	if score == nil {
		return "unknown"
	}
	switch {
	case *score >= 9.0:
		return "9+"
	case *score >= 8.0:
		return "8-9"
	case *score >= 7.0:
		return "7-8"
	case *score >= 6.0:
		return "6-7"
	default:
		return "0-6"
	}
}

// episodeRange buckets an episode count at thresholds 1/12/24
func episodeRange(episodes *int) string {
	if episodes == nil || *episodes <= 0 {
		return "unknown"
	}
	switch {
	case *episodes == 1:
		return "movie"
	case *episodes <= 12:
		return "short"
	case *episodes <= 24:
		return "medium"
	default:
		return "long"
	}
}

var (
	minutesPattern      = regexp.MustCompile(`(\d+)\s*min`)
	hoursMinutesPattern = regexp.MustCompile(`(\d+)\s*hr\s*(\d+)\s*min`)
	hoursPattern        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*hr`)
	secondsPattern      = regexp.MustCompile(`(\d+)\s*sec`)
	courPattern         = regexp.MustCompile(`(\d+)\s*cour`)
	bareNumberPattern   = regexp.MustCompile(`^\s*(\d+)\s*$`)
	anyNumberPattern    = regexp.MustCompile(`\d+`)
)

// ExtractDurationMinutes derives a minute count from a free-text duration
// string like "24 min per ep" or "1 hr 30 min". Pattern order matters: the
// first matching pattern wins. Unparseable strings yield nil.
func ExtractDurationMinutes(duration string) *int {
	s := strings.ToLower(strings.TrimSpace(duration))
	if s == "" {
		return nil
	}

	// "24 min per ep" -> 24; skipped when an hour component is present so
	// "1 hr 30 min" falls through to the combined pattern
	if !strings.Contains(s, "hr") {
		if m := minutesPattern.FindStringSubmatch(s); m != nil {
			return intPtr(atoi(m[1]))
		}
	}

	// "1 hr 30 min" -> 90
	if m := hoursMinutesPattern.FindStringSubmatch(s); m != nil {
		return intPtr(atoi(m[1])*60 + atoi(m[2]))
	}

	// "1.5 hr" -> 90, "2 hr" -> 120
	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		hours, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return intPtr(int(hours * 60))
		}
	}

	// "30 sec" -> rounds to nearest minute, >=30s rounds up
	if m := secondsPattern.FindStringSubmatch(s); m != nil {
		if atoi(m[1]) >= 30 {
			return intPtr(1)
		}
		return intPtr(0)
	}

	// "2 cour" -> 2 x 288 minutes (12 eps x 24 min per cour)
	if m := courPattern.FindStringSubmatch(s); m != nil {
		return intPtr(atoi(m[1]) * 288)
	}

	// Bare "45" -> assume minutes
	if m := bareNumberPattern.FindStringSubmatch(s); m != nil {
		return intPtr(atoi(m[1]))
	}

	// Last resort: first number found anywhere
	if m := anyNumberPattern.FindString(s); m != "" {
		return intPtr(atoi(m))
	}

	return nil
}

var airedPattern = regexp.MustCompile(`([A-Za-z]{3})\s+\d{1,2},\s*(\d{4})`)

// extractYearSeason derives (year, season) from an aired-date string like
// "Apr 3, 2016 to Jun 26, 2016", using the first date found
func extractYearSeason(aired *string) (int, string, bool) {
	if aired == nil {
		return 0, "", false
	}

	m := airedPattern.FindStringSubmatch(*aired)
	if m == nil {
		return 0, "", false
	}

	t, err := time.Parse("Jan", m[1])
	if err != nil {
		return 0, "", false
	}

	year, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, "", false
	}

	return year, seasonForMonth(int(t.Month())), true
}

func seasonForMonth(month int) string {
	switch {
	case month == 12 || month <= 2:
		return "winter"
	case month <= 5:
		return "spring"
	case month <= 8:
		return "summer"
	default:
		return "autumn"
	}
}

func intPtr(v int) *int {
	return &v
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
