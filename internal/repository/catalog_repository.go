package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/animedex/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAnimeNotFound = errors.New("anime not found")
)

// EntityRef is a named catalog entity attached to an anime (studio, genre, theme, demographic)
type EntityRef struct {
	MalID int    `json:"mal_id"`
	Name  string `json:"name"`
}

// VoiceActorRef is a voice actor attached to a character appearance
type VoiceActorRef struct {
	MalID    int     `json:"mal_id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
}

// CharacterRow is one of an anime's top characters with its voice actors
type CharacterRow struct {
	MalID       int             `json:"mal_id"`
	Name        string          `json:"name"`
	Role        string          `json:"role"`
	Favorites   *int            `json:"favorites"`
	ImageURL    *string         `json:"image_url"`
	VoiceActors []VoiceActorRef `json:"voice_actors"`
}

// AnimeRow is one denormalized anime row: scalar catalog fields joined with
// pre-aggregated relationship arrays, as consumed by the search indexer
type AnimeRow struct {
	models.Anime
	Studios      []EntityRef
	Genres       []EntityRef
	Themes       []EntityRef
	Demographics []EntityRef
	Characters   []CharacterRow
}

// SuggestionSeed is the per-anime input for autocomplete suggestion documents
type SuggestionSeed struct {
	MalID         int
	Title         string
	TitleEnglish  *string
	TitleSynonyms []string
	Type          *string
	Score         *float64
	Popularity    *int
	ImageURL      *string
	TopCharacters []string
}

// FilterOptions enumerates the distinct facet values used to populate filter UIs.
// Derived from the relational store, not the search engine; callers should cache it.
type FilterOptions struct {
	Genres        []string `json:"genres"`
	Types         []string `json:"types"`
	Statuses      []string `json:"statuses"`
	Seasons       []string `json:"seasons"`
	Sources       []string `json:"sources"`
	Ratings       []string `json:"ratings"`
	Studios       []string `json:"studios"`
	MinYear       *int     `json:"min_year"`
	MaxYear       *int     `json:"max_year"`
	ScoreRanges   []string `json:"score_ranges"`
	EpisodeRanges []string `json:"episode_ranges"`
}

// CatalogRepository exposes the read-only relational catalog to the indexer and façade
type CatalogRepository interface {
	CountAnime(ctx context.Context) (int64, error)
	FetchAnimeRows(ctx context.Context, limit, offset int) ([]AnimeRow, error)
	FetchSuggestionSeeds(ctx context.Context) ([]SuggestionSeed, error)
	ListStudios(ctx context.Context) ([]EntityRef, error)
	ListGenres(ctx context.Context) ([]EntityRef, error)
	ListThemes(ctx context.Context) ([]EntityRef, error)
	ListDemographics(ctx context.Context) ([]EntityRef, error)
	FilterOptions(ctx context.Context) (*FilterOptions, error)
}

// catalogRepository implements CatalogRepository over GORM
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// CountAnime returns the total number of catalog entries
func (r *catalogRepository) CountAnime(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Anime{}).Count(&count).Error
	return count, err
}

// animeRowQuery joins each anime with JSON-aggregated studios, genres, themes,
// demographics and its top 10 characters by favorites (nulls last), the
// characters carrying their Japanese voice actors. Ordered by mal_id so batch
// pagination is deterministic.
const animeRowQuery = `
WITH ranked_characters AS (
    SELECT
        ac.anime_id,
        c.mal_id AS character_mal_id,
        c.name AS character_name,
        c.image_url AS character_image_url,
        c.favorites,
        ac.role,
        ROW_NUMBER() OVER (
            PARTITION BY ac.anime_id
            ORDER BY c.favorites DESC NULLS LAST
        ) AS rn
    FROM anime_characters ac
    JOIN characters c ON ac.character_id = c.mal_id
),
top_characters AS (
    SELECT * FROM ranked_characters WHERE rn <= 10
),
character_voice_actors AS (
    SELECT
        acva.anime_id,
        acva.character_id,
        json_agg(
            DISTINCT jsonb_build_object(
                'mal_id', va.mal_id,
                'name', va.name,
                'image_url', va.image_url
            )
        ) AS voice_actors
    FROM anime_character_voice_actors acva
    JOIN voice_actors va ON acva.voice_actor_id = va.mal_id
    WHERE va.language = 'Japanese'
    GROUP BY acva.anime_id, acva.character_id
),
anime_studios_agg AS (
    SELECT
        ast.anime_id,
        json_agg(DISTINCT jsonb_build_object('mal_id', s.mal_id, 'name', s.name)) AS studios
    FROM anime_studios ast
    JOIN studios s ON ast.studio_id = s.mal_id
    GROUP BY ast.anime_id
),
anime_genres_agg AS (
    SELECT
        ag.anime_id,
        json_agg(DISTINCT jsonb_build_object('mal_id', g.mal_id, 'name', g.name)) AS genres
    FROM anime_genres ag
    JOIN genres g ON ag.genre_id = g.mal_id
    GROUP BY ag.anime_id
),
anime_themes_agg AS (
    SELECT
        at2.anime_id,
        json_agg(DISTINCT jsonb_build_object('mal_id', t.mal_id, 'name', t.name)) AS themes
    FROM anime_themes at2
    JOIN themes t ON at2.theme_id = t.mal_id
    GROUP BY at2.anime_id
),
anime_demographics_agg AS (
    SELECT
        ad.anime_id,
        json_agg(DISTINCT jsonb_build_object('mal_id', d.mal_id, 'name', d.name)) AS demographics
    FROM anime_demographics ad
    JOIN demographics d ON ad.demographic_id = d.mal_id
    GROUP BY ad.anime_id
),
sorted_top_characters AS (
    SELECT
        tc.anime_id,
        tc.character_mal_id,
        tc.character_name,
        tc.character_image_url,
        tc.favorites,
        tc.role,
        COALESCE(cva.voice_actors, '[]'::json) AS voice_actors
    FROM top_characters tc
    LEFT JOIN character_voice_actors cva
        ON tc.anime_id = cva.anime_id
        AND tc.character_mal_id = cva.character_id
    ORDER BY tc.favorites DESC NULLS LAST
),
anime_characters_agg AS (
    SELECT
        anime_id,
        json_agg(
            jsonb_build_object(
                'mal_id', character_mal_id,
                'name', character_name,
                'role', role,
                'favorites', favorites,
                'image_url', character_image_url,
                'voice_actors', voice_actors
            )
        ) AS characters
    FROM sorted_top_characters
    GROUP BY anime_id
)
SELECT
    a.*,
    COALESCE(asa.studios, '[]'::json)::text AS studios_json,
    COALESCE(aga.genres, '[]'::json)::text AS genres_json,
    COALESCE(ata.themes, '[]'::json)::text AS themes_json,
    COALESCE(ada.demographics, '[]'::json)::text AS demographics_json,
    COALESCE(aca.characters, '[]'::json)::text AS characters_json
FROM anime a
LEFT JOIN anime_studios_agg asa ON a.mal_id = asa.anime_id
LEFT JOIN anime_genres_agg aga ON a.mal_id = aga.anime_id
LEFT JOIN anime_themes_agg ata ON a.mal_id = ata.anime_id
LEFT JOIN anime_demographics_agg ada ON a.mal_id = ada.anime_id
LEFT JOIN anime_characters_agg aca ON a.mal_id = aca.anime_id
ORDER BY a.mal_id
LIMIT ? OFFSET ?
`

// scannedAnimeRow receives the raw query output before JSON decoding
type scannedAnimeRow struct {
	models.Anime
	StudiosJSON      string `gorm:"column:studios_json"`
	GenresJSON       string `gorm:"column:genres_json"`
	ThemesJSON       string `gorm:"column:themes_json"`
	DemographicsJSON string `gorm:"column:demographics_json"`
	CharactersJSON   string `gorm:"column:characters_json"`
}

// FetchAnimeRows returns one page of denormalized anime rows for indexing
func (r *catalogRepository) FetchAnimeRows(ctx context.Context, limit, offset int) ([]AnimeRow, error) {
	var scanned []scannedAnimeRow
	if err := r.db.WithContext(ctx).Raw(animeRowQuery, limit, offset).Scan(&scanned).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch anime rows: %w", err)
	}

	rows := make([]AnimeRow, 0, len(scanned))
	for _, s := range scanned {
		row := AnimeRow{Anime: s.Anime}
		if err := decodeAggregates(&row, s); err != nil {
			return nil, fmt.Errorf("failed to decode aggregates for anime %d: %w", s.MalID, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func decodeAggregates(row *AnimeRow, s scannedAnimeRow) error {
	if err := json.Unmarshal([]byte(s.StudiosJSON), &row.Studios); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s.GenresJSON), &row.Genres); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s.ThemesJSON), &row.Themes); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s.DemographicsJSON), &row.Demographics); err != nil {
		return err
	}
	return json.Unmarshal([]byte(s.CharactersJSON), &row.Characters)
}

// suggestionSeedQuery pulls each anime with its top 20 character names by
// favorites. Ordered by popularity so the most searched-for titles are built first.
const suggestionSeedQuery = `
SELECT
    a.mal_id,
    a.title,
    a.title_english,
    a.title_synonyms,
    a.type,
    a.score,
    a.popularity,
    a.image_url,
    COALESCE(
        (
            SELECT json_agg(sub.name ORDER BY sub.favorites DESC NULLS LAST)
            FROM (
                SELECT c.name, c.favorites
                FROM anime_characters ac
                JOIN characters c ON ac.character_id = c.mal_id
                WHERE ac.anime_id = a.mal_id
                AND c.name IS NOT NULL
                ORDER BY c.favorites DESC NULLS LAST
                LIMIT 20
            ) sub
        ),
        '[]'::json
    )::text AS top_characters_json
FROM anime a
WHERE a.title IS NOT NULL
ORDER BY a.popularity ASC NULLS LAST
`

type scannedSeed struct {
	MalID             int                `gorm:"column:mal_id"`
	Title             string             `gorm:"column:title"`
	TitleEnglish      *string            `gorm:"column:title_english"`
	TitleSynonyms     models.StringArray `gorm:"column:title_synonyms"`
	Type              *string            `gorm:"column:type"`
	Score             *float64           `gorm:"column:score"`
	Popularity        *int               `gorm:"column:popularity"`
	ImageURL          *string            `gorm:"column:image_url"`
	TopCharactersJSON string             `gorm:"column:top_characters_json"`
}

// FetchSuggestionSeeds returns per-anime autocomplete inputs for the full catalog
func (r *catalogRepository) FetchSuggestionSeeds(ctx context.Context) ([]SuggestionSeed, error) {
	var scanned []scannedSeed
	if err := r.db.WithContext(ctx).Raw(suggestionSeedQuery).Scan(&scanned).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch suggestion seeds: %w", err)
	}

	seeds := make([]SuggestionSeed, 0, len(scanned))
	for _, s := range scanned {
		seed := SuggestionSeed{
			MalID:         s.MalID,
			Title:         s.Title,
			TitleEnglish:  s.TitleEnglish,
			TitleSynonyms: s.TitleSynonyms,
			Type:          s.Type,
			Score:         s.Score,
			Popularity:    s.Popularity,
			ImageURL:      s.ImageURL,
		}
		if err := json.Unmarshal([]byte(s.TopCharactersJSON), &seed.TopCharacters); err != nil {
			return nil, fmt.Errorf("failed to decode characters for anime %d: %w", s.MalID, err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, nil
}

// ListStudios returns all named studios
func (r *catalogRepository) ListStudios(ctx context.Context) ([]EntityRef, error) {
	return r.listEntities(ctx, &models.Studio{})
}

// ListGenres returns all named genres
func (r *catalogRepository) ListGenres(ctx context.Context) ([]EntityRef, error) {
	return r.listEntities(ctx, &models.Genre{})
}

// ListThemes returns all named themes
func (r *catalogRepository) ListThemes(ctx context.Context) ([]EntityRef, error) {
	return r.listEntities(ctx, &models.Theme{})
}

// ListDemographics returns all named demographics
func (r *catalogRepository) ListDemographics(ctx context.Context) ([]EntityRef, error) {
	return r.listEntities(ctx, &models.Demographic{})
}

func (r *catalogRepository) listEntities(ctx context.Context, model interface{}) ([]EntityRef, error) {
	var refs []EntityRef
	err := r.db.WithContext(ctx).
		Model(model).
		Select("mal_id", "name").
		Where("name IS NOT NULL").
		Order("name").
		Scan(&refs).Error
	return refs, err
}

// FilterOptions enumerates distinct facet values from the catalog
func (r *catalogRepository) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	opts := &FilterOptions{
		// Fixed buckets, must match the mapper's computed ranges
		ScoreRanges:   []string{"All", "9+", "8-9", "7-8", "6-7", "0-6"},
		EpisodeRanges: []string{"All", "movie", "short", "medium", "long"},
	}

	genres, err := r.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range genres {
		opts.Genres = append(opts.Genres, g.Name)
	}

	studios, err := r.ListStudios(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range studios {
		opts.Studios = append(opts.Studios, s.Name)
	}

	distinctColumns := []struct {
		column string
		dest   *[]string
	}{
		{"type", &opts.Types},
		{"status", &opts.Statuses},
		{"season", &opts.Seasons},
		{"source", &opts.Sources},
		{"rating", &opts.Ratings},
	}
	for _, dc := range distinctColumns {
		if err := r.db.WithContext(ctx).
			Model(&models.Anime{}).
			Distinct(dc.column).
			Where(dc.column+" IS NOT NULL").
			Order(dc.column).
			Pluck(dc.column, dc.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to enumerate %s values: %w", dc.column, err)
		}
	}

	var yearRange struct {
		MinYear *int
		MaxYear *int
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Anime{}).
		Select("MIN(year) AS min_year, MAX(year) AS max_year").
		Where("year IS NOT NULL").
		Scan(&yearRange).Error; err != nil {
		return nil, fmt.Errorf("failed to compute year range: %w", err)
	}
	opts.MinYear = yearRange.MinYear
	opts.MaxYear = yearRange.MaxYear

	return opts, nil
}
