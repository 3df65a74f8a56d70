// Package audio is the fallback transcription path: it downloads a video's
// audio track with yt-dlp and transcribes it with WhisperX.
package audio
