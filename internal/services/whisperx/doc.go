// Package whisperx runs WhisperX through uvx to transcribe downloaded
// audio when a video has no usable captions.
//
// Audio is first normalized to a mono 16kHz WAV with ffmpeg, then handed to
// WhisperX, whose JSON output is flattened into plain text together with the
// detected language.
package whisperx
