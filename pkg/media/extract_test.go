package media

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bskygrab/pkg/bsky"
)

func imagePost(uri, createdAt string, urls ...string) bsky.FeedItem {
	images := make([]bsky.ImageView, 0, len(urls))
	for _, u := range urls {
		images = append(images, bsky.ImageView{Fullsize: u})
	}
	return bsky.FeedItem{Post: bsky.Post{
		URI:    uri,
		Record: bsky.Record{CreatedAt: createdAt},
		Embed:  &bsky.Embed{Type: bsky.EmbedTypeImages, Images: images},
	}}
}

func videoPost(uri, createdAt, playlist string) bsky.FeedItem {
	return bsky.FeedItem{Post: bsky.Post{
		URI:    uri,
		Record: bsky.Record{CreatedAt: createdAt},
		Embed:  &bsky.Embed{Type: bsky.EmbedTypeVideo, Playlist: playlist},
	}}
}

func TestExtractImageNaming(t *testing.T) {
	item := imagePost(
		"at://did:plc:abc/app.bsky.feed.post/3kabc123",
		"2024-03-01T12:30:45.000Z",
		"https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:abc/bafyabcde12345@jpeg",
	)

	tasks := Extract(item, "alice_posts")

	assert.Len(t, tasks, 1)
	assert.Equal(t, "alice_posts", tasks[0].Dir)
	assert.Equal(t, KindImage, tasks[0].Kind)
	// Colons become dashes, fragment is the last 5 chars before '@',
	// extension is whatever follows the '@'.
	assert.Equal(t, "2024-03-01T12-30-45.000Z_3kabc123_12345.jpeg", tasks[0].Filename)
}

func TestExtractDeterministic(t *testing.T) {
	item := imagePost(
		"at://did:plc:abc/app.bsky.feed.post/3kabc123",
		"2024-03-01T12:30:45.000Z",
		"https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:abc/bafyabcde12345@jpeg",
	)

	first := Extract(item, "alice_posts")
	second := Extract(item, "alice_posts")
	assert.Equal(t, first, second)
}

func TestExtractMultipleImages(t *testing.T) {
	item := imagePost(
		"at://did:plc:abc/app.bsky.feed.post/3kxyz",
		"2024-05-10T08:00:00.000Z",
		"https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:abc/bafyaaaaa11111@jpeg",
		"https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:abc/bafybbbbb22222@png",
	)

	tasks := Extract(item, "alice_posts")

	assert.Len(t, tasks, 2)
	// Distinct source URLs must yield distinct filenames.
	assert.NotEqual(t, tasks[0].Filename, tasks[1].Filename)
	assert.Equal(t, "2024-05-10T08-00-00.000Z_3kxyz_11111.jpeg", tasks[0].Filename)
	assert.Equal(t, "2024-05-10T08-00-00.000Z_3kxyz_22222.png", tasks[1].Filename)
}

func TestExtractPlaylist(t *testing.T) {
	item := videoPost(
		"at://did:plc:abc/app.bsky.feed.post/3kvid",
		"2024-06-01T10:00:00.000Z",
		"https://video.bsky.app/watch/did%3Aplc%3Aabc/bafyvid/playlist.m3u8",
	)

	tasks := Extract(item, "alice_posts")

	assert.Len(t, tasks, 1)
	assert.Equal(t, KindPlaylist, tasks[0].Kind)
	assert.Equal(t, "2024-06-01T10-00-00.000Z_3kvid.m3u8", tasks[0].Filename)
	assert.Equal(t, "https://video.bsky.app/watch/did%3Aplc%3Aabc/bafyvid/playlist.m3u8", tasks[0].URL)
}

func TestExtractRecordWithMedia(t *testing.T) {
	item := bsky.FeedItem{Post: bsky.Post{
		URI:    "at://did:plc:abc/app.bsky.feed.post/3kquote",
		Record: bsky.Record{CreatedAt: "2024-07-01T00:00:00.000Z"},
		Embed: &bsky.Embed{
			Type: bsky.EmbedTypeRecordWithMedia,
			Media: &bsky.Embed{
				Type: bsky.EmbedTypeImages,
				Images: []bsky.ImageView{
					{Fullsize: "https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:abc/bafyqqqqq54321@jpeg"},
				},
			},
		},
	}}

	tasks := Extract(item, "alice_posts")

	assert.Len(t, tasks, 1)
	assert.Equal(t, "2024-07-01T00-00-00.000Z_3kquote_54321.jpeg", tasks[0].Filename)
}

func TestExtractNoMedia(t *testing.T) {
	tests := []struct {
		name string
		item bsky.FeedItem
	}{
		{
			name: "no embed",
			item: bsky.FeedItem{Post: bsky.Post{
				URI:    "at://did:plc:abc/app.bsky.feed.post/3ktext",
				Record: bsky.Record{CreatedAt: "2024-01-01T00:00:00.000Z"},
			}},
		},
		{
			name: "external link embed",
			item: bsky.FeedItem{Post: bsky.Post{
				URI:    "at://did:plc:abc/app.bsky.feed.post/3klink",
				Record: bsky.Record{CreatedAt: "2024-01-01T00:00:00.000Z"},
				Embed:  &bsky.Embed{Type: "app.bsky.embed.external#view"},
			}},
		},
		{
			name: "record quote without media",
			item: bsky.FeedItem{Post: bsky.Post{
				URI:    "at://did:plc:abc/app.bsky.feed.post/3kquote",
				Record: bsky.Record{CreatedAt: "2024-01-01T00:00:00.000Z"},
				Embed:  &bsky.Embed{Type: bsky.EmbedTypeRecordWithMedia},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Extract(tt.item, "alice_posts"))
		})
	}
}

func TestExtractAll(t *testing.T) {
	items := []bsky.FeedItem{
		imagePost("at://did:plc:abc/app.bsky.feed.post/3k1", "2024-01-01T00:00:00.000Z",
			"https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:abc/bafyaaaaa11111@jpeg",
			"https://cdn.bsky.app/img/feed_fullsize/plain/did:plc:abc/bafybbbbb22222@jpeg"),
		{Post: bsky.Post{URI: "at://did:plc:abc/app.bsky.feed.post/3k2", Record: bsky.Record{CreatedAt: "2024-01-02T00:00:00.000Z"}}},
		videoPost("at://did:plc:abc/app.bsky.feed.post/3k3", "2024-01-03T00:00:00.000Z",
			"https://video.bsky.app/watch/did/bafyvid/playlist.m3u8"),
	}

	tasks := ExtractAll(items, "alice_posts")

	assert.Len(t, tasks, 3)
	assert.Equal(t, KindImage, tasks[0].Kind)
	assert.Equal(t, KindImage, tasks[1].Kind)
	assert.Equal(t, KindPlaylist, tasks[2].Kind)
}

func TestExtractURLWithoutMarker(t *testing.T) {
	// URLs without the '@' extension marker fall back to jpg.
	item := imagePost(
		"at://did:plc:abc/app.bsky.feed.post/3kraw",
		"2024-02-01T00:00:00.000Z",
		"https://cdn.example.com/media/bafyccccc99999",
	)

	tasks := Extract(item, "alice_posts")

	assert.Len(t, tasks, 1)
	assert.Equal(t, "2024-02-01T00-00-00.000Z_3kraw_99999.jpg", tasks[0].Filename)
}

func TestStatsAdd(t *testing.T) {
	var s Stats
	s.Add(Outcome{Status: StatusDownloaded})
	s.Add(Outcome{Status: StatusDownloaded})
	s.Add(Outcome{Status: StatusAlreadyPresent})
	s.Add(Outcome{Status: StatusFailed})

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Downloaded)
	assert.Equal(t, 1, s.AlreadyPresent)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 3, s.Have())
}
