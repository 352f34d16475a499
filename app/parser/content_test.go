package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseContent_Sizes(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		original string
		repack   string
	}{
		{
			name:     "strong values",
			html:     "<p>Original Size: <strong>45 GB</strong></p>\n<p>Repack Size: <strong>22 GB</strong></p>",
			original: "45 GB",
			repack:   "22 GB",
		},
		{
			name:     "decimal values",
			html:     "<p>Original Size: <strong>45.7 GB</strong></p><p>Repack Size: <strong>22.5 GB</strong></p>",
			original: "45.7 GB",
			repack:   "22.5 GB",
		},
		{
			name:     "megabytes",
			html:     "<p>Original Size: <strong>500 MB</strong></p><p>Repack Size: <strong>350 MB</strong></p>",
			original: "500 MB",
			repack:   "350 MB",
		},
		{
			name:     "terabytes",
			html:     "<p>Original Size: <strong>1.2 TB</strong></p><p>Repack Size: <strong>800 GB</strong></p>",
			original: "1.2 TB",
			repack:   "800 GB",
		},
		{
			name:     "selective download",
			html:     "<p>Original Size: <strong>45 GB</strong></p><p>Repack Size: <strong>from 10.5 GB</strong></p>",
			original: "45 GB",
			repack:   "from 10.5 GB",
		},
		{
			name:     "bare values",
			html:     "<p>Original Size: 45 GB</p><p>Repack Size: 22,4 GB</p>",
			original: "45 GB",
			repack:   "22,4 GB",
		},
		{
			name:     "emphasised labels",
			html:     "<p><strong>Original Size:</strong> <strong>75 GB</strong></p><p><strong>Repack Size:</strong> <strong>from 35 GB</strong></p>",
			original: "75 GB",
			repack:   "from 35 GB",
		},
		{
			name:     "no markers",
			html:     "<p>No size information here</p>",
			original: UnknownSize,
			repack:   UnknownSize,
		},
		{
			name:     "empty",
			html:     "",
			original: UnknownSize,
			repack:   UnknownSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseContent(tt.html)

			assert.Equal(t, tt.original, got.OriginalSize)
			assert.Equal(t, tt.repack, got.RepackSize)
		})
	}
}

func TestParseContent_SelectiveRepackSize(t *testing.T) {
	got := ParseContent("...Repack Size: <strong>from 10.5 GB</strong>...")

	assert.Equal(t, "from 10.5 GB", got.RepackSize)
	assert.Equal(t, UnknownSize, got.OriginalSize)
}

func TestParseContent_Magnet(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "plain link",
			html: `<p>Download: <a href="magnet:?xt=urn:btih:abc123def456">Magnet</a></p>`,
			want: "magnet:?xt=urn:btih:abc123def456",
		},
		{
			name: "with parameters",
			html: `<a href="magnet:?xt=urn:btih:abc123def456&dn=Game+Name&tr=http://tracker.example.com">Magnet</a>`,
			want: "magnet:?xt=urn:btih:abc123def456&dn=Game+Name&tr=http://tracker.example.com",
		},
		{
			name: "encoded ampersands",
			html: `<a href="magnet:?xt=urn:btih:abc123def456&amp;dn=Game+Name&amp;tr=http://tracker.example.com">Magnet</a>`,
			want: "magnet:?xt=urn:btih:abc123def456&dn=Game+Name&tr=http://tracker.example.com",
		},
		{
			name: "trailing punctuation in text",
			html: `<p>Grab it here: magnet:?xt=urn:btih:1a2b3c4d5e6f7890&amp;dn=The+Game;.</p>`,
			want: "magnet:?xt=urn:btih:1a2b3c4d5e6f7890&dn=The+Game",
		},
		{
			name: "first link wins",
			html: `<a href="magnet:?xt=urn:btih:first">1</a><a href="magnet:?xt=urn:btih:second">2</a>`,
			want: "magnet:?xt=urn:btih:first",
		},
		{
			name: "absent",
			html: "<p>Original Size: <strong>45 GB</strong></p><p>No magnet link here</p>",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseContent(tt.html)

			assert.Equal(t, tt.want, got.MagnetURI)
			assert.NotContains(t, got.MagnetURI, "&amp;")
		})
	}
}

func TestParseContent_RealisticBlock(t *testing.T) {
	html := `
		<p><strong>Genres/Tags:</strong> Action, RPG, Open world</p>
		<p><strong>Company:</strong> CD Projekt RED</p>
		<p><strong>Languages:</strong> ENG, RUS</p>
		<p><strong>Original Size:</strong> <strong>75 GB</strong></p>
		<p><strong>Repack Size:</strong> <strong>from 35 GB</strong></p>
		<p><strong>Download Mirrors:</strong></p>
		<p><a href="magnet:?xt=urn:btih:abcdef123456&amp;dn=Cyberpunk+2077&amp;tr=udp://tracker.example.com">Magnet Link</a></p>
	`

	got := ParseContent(html)

	assert.Equal(t, Content{
		OriginalSize: "75 GB",
		RepackSize:   "from 35 GB",
		MagnetURI:    "magnet:?xt=urn:btih:abcdef123456&dn=Cyberpunk+2077&tr=udp://tracker.example.com",
	}, got)
}
