// Package convert turns downloaded HLS playlists into single-file MP4
// containers.
//
// A downloaded .m3u8 manifest lists one or more variant or segment
// playlists as relative entries. Targets resolves every entry against
// the manifest's base URL and derives a collision-free output name from
// the entry's full relative path. The Remuxer then invokes ffmpeg with
// stream copy, so the media is repackaged without re-encoding.
//
// Conversion is sequential and failure-isolated: one broken stream is
// reported and the batch continues.
package convert
