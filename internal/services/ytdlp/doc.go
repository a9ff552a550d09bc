// Package ytdlp downloads source media with the yt-dlp CLI.
//
// Audio and video are fetched separately: audio is extracted to mp3 and
// video is capped by a closed Quality ladder. File names follow the media id
// so reruns land on the same artifacts. Commands go through an injectable
// runner so tests never touch the network.
package ytdlp
