package models

import (
	"github.com/lib/pq"
)

// StringArray maps PostgreSQL text[] columns. pq handles the array literal
// quoting, so synonyms containing commas survive the round trip.
type StringArray = pq.StringArray

// Anime is one catalog entry, keyed by its MyAnimeList ID
type Anime struct {
	MalID         int         `gorm:"primaryKey;column:mal_id" json:"mal_id"`
	Title         string      `gorm:"not null;index" json:"title"`
	TitleEnglish  *string     `json:"title_english"`
	TitleJapanese *string     `json:"title_japanese"`
	TitleSynonyms StringArray `gorm:"type:text[]" json:"title_synonyms"`
	Synopsis      string      `gorm:"type:text" json:"synopsis"`
	Type          *string     `gorm:"index" json:"type"`
	Source        *string     `json:"source"`
	Status        *string     `gorm:"index" json:"status"`
	Rating        *string     `json:"rating"`
	Score         *float64    `gorm:"index" json:"score"`
	Popularity    *int        `gorm:"index" json:"popularity"`
	Members       *int        `json:"members"`
	Episodes      *int        `json:"episodes"`
	Duration      *string     `json:"duration"`
	Season        *string     `json:"season"`
	Year          *int        `gorm:"index" json:"year"`
	AiredString   *string     `gorm:"column:aired_string" json:"aired_string"`
	ImageURL      *string     `gorm:"column:image_url" json:"image_url"`
	TrailerURL    *string     `gorm:"column:trailer_url" json:"trailer_url"`
}

func (Anime) TableName() string {
	return "anime"
}

// Studio is an animation studio
type Studio struct {
	MalID int    `gorm:"primaryKey;column:mal_id" json:"mal_id"`
	Name  string `gorm:"not null;index" json:"name"`
}

func (Studio) TableName() string {
	return "studios"
}

// Genre is a content genre (Action, Comedy, ...)
type Genre struct {
	MalID int    `gorm:"primaryKey;column:mal_id" json:"mal_id"`
	Name  string `gorm:"not null;index" json:"name"`
}

func (Genre) TableName() string {
	return "genres"
}

// Theme is a narrative theme (School, Military, ...)
type Theme struct {
	MalID int    `gorm:"primaryKey;column:mal_id" json:"mal_id"`
	Name  string `gorm:"not null;index" json:"name"`
}

func (Theme) TableName() string {
	return "themes"
}

// Demographic is a target audience (Shounen, Seinen, ...)
type Demographic struct {
	MalID int    `gorm:"primaryKey;column:mal_id" json:"mal_id"`
	Name  string `gorm:"not null;index" json:"name"`
}

func (Demographic) TableName() string {
	return "demographics"
}

// Character is a catalog character, shared across anime
type Character struct {
	MalID     int     `gorm:"primaryKey;column:mal_id" json:"mal_id"`
	Name      string  `gorm:"not null;index" json:"name"`
	Favorites *int    `json:"favorites"`
	ImageURL  *string `gorm:"column:image_url" json:"image_url"`
}

func (Character) TableName() string {
	return "characters"
}

// VoiceActor voices characters in one or more languages
type VoiceActor struct {
	MalID    int     `gorm:"primaryKey;column:mal_id" json:"mal_id"`
	Name     string  `gorm:"not null;index" json:"name"`
	Language string  `gorm:"index" json:"language"`
	ImageURL *string `gorm:"column:image_url" json:"image_url"`
}

func (VoiceActor) TableName() string {
	return "voice_actors"
}

// AnimeStudio links anime to studios
type AnimeStudio struct {
	AnimeID  int `gorm:"primaryKey;column:anime_id" json:"anime_id"`
	StudioID int `gorm:"primaryKey;column:studio_id" json:"studio_id"`
}

func (AnimeStudio) TableName() string {
	return "anime_studios"
}

// AnimeGenre links anime to genres
type AnimeGenre struct {
	AnimeID int `gorm:"primaryKey;column:anime_id" json:"anime_id"`
	GenreID int `gorm:"primaryKey;column:genre_id" json:"genre_id"`
}

func (AnimeGenre) TableName() string {
	return "anime_genres"
}

// AnimeTheme links anime to themes
type AnimeTheme struct {
	AnimeID int `gorm:"primaryKey;column:anime_id" json:"anime_id"`
	ThemeID int `gorm:"primaryKey;column:theme_id" json:"theme_id"`
}

func (AnimeTheme) TableName() string {
	return "anime_themes"
}

// AnimeDemographic links anime to demographics
type AnimeDemographic struct {
	AnimeID       int `gorm:"primaryKey;column:anime_id" json:"anime_id"`
	DemographicID int `gorm:"primaryKey;column:demographic_id" json:"demographic_id"`
}

func (AnimeDemographic) TableName() string {
	return "anime_demographics"
}

// AnimeCharacter links anime to characters with a role (Main/Supporting)
type AnimeCharacter struct {
	AnimeID     int    `gorm:"primaryKey;column:anime_id" json:"anime_id"`
	CharacterID int    `gorm:"primaryKey;column:character_id" json:"character_id"`
	Role        string `json:"role"`
}

func (AnimeCharacter) TableName() string {
	return "anime_characters"
}

// AnimeCharacterVoiceActor links a character's appearance in an anime to its voice actors
type AnimeCharacterVoiceActor struct {
	AnimeID      int `gorm:"primaryKey;column:anime_id" json:"anime_id"`
	CharacterID  int `gorm:"primaryKey;column:character_id" json:"character_id"`
	VoiceActorID int `gorm:"primaryKey;column:voice_actor_id" json:"voice_actor_id"`
}

func (AnimeCharacterVoiceActor) TableName() string {
	return "anime_character_voice_actors"
}
