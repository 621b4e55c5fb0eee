// Package deps checks that the external executables factcheck shells out to
// (yt-dlp, ffmpeg, ffprobe, uvx) are on PATH and reports their versions.
package deps
