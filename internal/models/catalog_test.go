package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArrayScan(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan([]byte(`{DN,"Death Note"}`)))
	assert.Equal(t, StringArray{"DN", "Death Note"}, a)

	require.NoError(t, a.Scan("{One}"))
	assert.Equal(t, StringArray{"One"}, a)

	require.NoError(t, a.Scan("{}"))
	assert.Equal(t, StringArray{}, a)

	require.NoError(t, a.Scan(nil))
	assert.Nil(t, a)
}

// Synonyms regularly contain commas; the array codec must keep them as one
// element instead of splitting on the delimiter.
func TestStringArrayQuotedComma(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan(`{"Love, Chunibyo & Other Delusions",AltTitle}`))
	assert.Equal(t, StringArray{"Love, Chunibyo & Other Delusions", "AltTitle"}, a)

	v, err := a.Value()
	require.NoError(t, err)

	var back StringArray
	require.NoError(t, back.Scan(v))
	assert.Equal(t, a, back)
}

func TestStringArrayValue(t *testing.T) {
	v, err := StringArray{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a","b"}`, v)

	v, err = StringArray{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	v, err = StringArray(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "anime", Anime{}.TableName())
	assert.Equal(t, "anime_characters", AnimeCharacter{}.TableName())
	assert.Equal(t, "anime_character_voice_actors", AnimeCharacterVoiceActor{}.TableName())
}
