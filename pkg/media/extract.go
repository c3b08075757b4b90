package media

import (
	"fmt"
	"strings"

	"bskygrab/pkg/bsky"
)

// Extract derives the download tasks for one feed item. It is a pure
// function: identical inputs always produce identical filenames. Items
// without an image or playlist embed yield no tasks.
//
// Image names follow {createdAt}_{rkey}_{fragment}.{ext} where the
// fragment is the last 5 characters of the URL before its '@' and the
// extension is the URL suffix after the final '@' (the Bluesky CDN
// encodes the served format there). Playlists are named
// {createdAt}_{rkey}.m3u8. Colons in the timestamp are replaced so the
// names stay portable.
func Extract(item bsky.FeedItem, dir string) []Task {
	embed := item.Post.Embed.MediaEmbed()
	if embed == nil {
		return nil
	}

	stamp := strings.ReplaceAll(item.Post.Record.CreatedAt, ":", "-")
	rkey := item.Post.RKey()

	if len(embed.Images) > 0 {
		tasks := make([]Task, 0, len(embed.Images))
		for _, img := range embed.Images {
			tasks = append(tasks, Task{
				Dir:      dir,
				Filename: fmt.Sprintf("%s_%s_%s.%s", stamp, rkey, urlFragment(img.Fullsize), urlExtension(img.Fullsize)),
				URL:      img.Fullsize,
				Kind:     KindImage,
			})
		}
		return tasks
	}

	if embed.Playlist != "" {
		return []Task{{
			Dir:      dir,
			Filename: fmt.Sprintf("%s_%s.m3u8", stamp, rkey),
			URL:      embed.Playlist,
			Kind:     KindPlaylist,
		}}
	}

	return nil
}

// ExtractAll flattens the tasks of many feed items
func ExtractAll(items []bsky.FeedItem, dir string) []Task {
	var tasks []Task
	for _, item := range items {
		tasks = append(tasks, Extract(item, dir)...)
	}
	return tasks
}

// urlFragment returns the last 5 characters of the URL before its
// first '@'. The CDN path is content-addressed, so the fragment keeps
// names of distinct images in one post from colliding.
func urlFragment(url string) string {
	base := url
	if idx := strings.Index(url, "@"); idx >= 0 {
		base = url[:idx]
	}
	if len(base) > 5 {
		base = base[len(base)-5:]
	}
	return base
}

// urlExtension returns the URL suffix after the final '@', falling
// back to "jpg" for URLs without one.
func urlExtension(url string) string {
	if idx := strings.LastIndex(url, "@"); idx >= 0 && idx+1 < len(url) {
		return url[idx+1:]
	}
	return "jpg"
}
