package enrich

import (
	"context"

	"github.com/ademuri/lastfm-go/lastfm"
)

// LastFM adapts a last.fm client to the GenreSource interface, serving as
// the fallback when MusicBrainz has no tags for an artist.
type LastFM struct {
	client *lastfm.Api
}

func NewLastFM(apiKey, secret string) *LastFM {
	return &LastFM{client: lastfm.New(apiKey, secret)}
}

func (l *LastFM) ArtistGenres(ctx context.Context, name string) ([]string, error) {
	topTags, err := l.client.Artist.GetTopTags(lastfm.P{
		"artist":      name,
		"autocorrect": 1,
	})
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, t := range topTags.Tags {
		if t.Name != "" {
			tags = append(tags, t.Name)
		}
	}
	return tags, nil
}
