// Package language normalizes caption and transcription language codes.
//
// Tags are parsed with golang.org/x/text/language so region variants such as
// "en-GB" collapse to their base language; a small alias table covers English
// language names and bibliographic ISO 639-2 codes.
package language
