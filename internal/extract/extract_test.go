package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "simple lead",
			fragment: `<div class="lead">to write</div>`,
			want:     "to write",
		},
		{
			name:     "lead inside container",
			fragment: `<div class="container"><h2 class="page-header">x</h2><div class="lead"> писать, написать </div></div>`,
			want:     "писать, написать",
		},
		{
			name:     "empty lead",
			fragment: `<div class="lead">   </div>`,
			want:     "",
		},
		{
			name:     "no lead",
			fragment: `<div class="container"><p>Verb</p></div>`,
			want:     "",
		},
		{
			name:     "empty fragment",
			fragment: "",
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Translation(tt.fragment))
		})
	}
}

func TestHebrewHeadword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "headword after label",
			fragment: `<h2 class="page-header">INFINITIVE לכתוב</h2>`,
			want:     "לכתוב",
		},
		{
			name:     "nested inline markup stripped",
			fragment: `<div class="container"><h2 class="page-header"><span class="menukad">Verb</span> לִכְתֹּב</h2></div>`,
			want:     "לִכְתֹּב",
		},
		{
			name:     "no hebrew runes",
			fragment: `<h2 class="page-header">INFINITIVE only latin</h2>`,
			want:     "",
		},
		{
			name:     "no header",
			fragment: `<div class="lead">to write</div>`,
			want:     "",
		},
		{
			name:     "empty header",
			fragment: `<h2 class="page-header"></h2>`,
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, HebrewHeadword(tt.fragment))
		})
	}
}

func TestTranscription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "infinitive anchor wins",
			fragment: `<div class="container"><div id="INF-L"><span class="transcription">likhtov</span></div><div id="s"><span class="transcription">sefer</span></div></div>`,
			want:     "likhtov",
		},
		{
			name:     "singular noun fallback",
			fragment: `<div class="container"><div id="s"><span class="transcription"> sefer </span></div></div>`,
			want:     "sefer",
		},
		{
			name:     "adjective fallback",
			fragment: `<div class="container"><div id="ms-a"><span class="transcription">gadol</span></div></div>`,
			want:     "gadol",
		},
		{
			name:     "lead anchor for adverbs",
			fragment: `<div class="container"><div class="lead">slowly <span class="transcription">le'at</span></div></div>`,
			want:     "le'at",
		},
		{
			name:     "first anchor without transcription decides",
			fragment: `<div class="container"><div id="INF-L">no span here</div><div class="lead"><span class="transcription">x</span></div></div>`,
			want:     "",
		},
		{
			name:     "no anchors",
			fragment: `<div class="container"><p>Verb</p></div>`,
			want:     "",
		},
		{
			name:     "empty fragment",
			fragment: "",
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Transcription(tt.fragment))
		})
	}
}

func TestWordType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "dash separated",
			fragment: `<div class="container"><p>Verb – pa'al</p></div>`,
			want:     "Verb",
		},
		{
			name:     "hyphen separated",
			fragment: `<div class="container"><p>NOUN - masculine</p></div>`,
			want:     "Noun",
		},
		{
			name:     "no hyphen keeps whole label",
			fragment: `<div class="container"><p>Adverb</p></div>`,
			want:     "Adverb",
		},
		{
			name:     "multi-word label keeps only first rune capitalized",
			fragment: `<div class="container"><p>Proper Noun - name</p></div>`,
			want:     "Proper noun",
		},
		{
			name:     "no paragraph",
			fragment: `<div class="container"><div class="lead">x</div></div>`,
			want:     "",
		},
		{
			name:     "no container",
			fragment: `<p>Verb - pa'al</p>`,
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, WordType(tt.fragment))
		})
	}
}

func TestSearchTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		translation string
		want        []string
	}{
		{
			name:        "split trim and drop empties",
			translation: "write, to write,  compose",
			want:        []string{"write", "to write", "compose"},
		},
		{
			name:        "single token",
			translation: "писать",
			want:        []string{"писать"},
		},
		{
			name:        "only separators",
			translation: " , ,, ",
			want:        nil,
		},
		{
			name:        "absent input",
			translation: "",
			want:        nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, SearchTokens(tt.translation))
		})
	}
}
