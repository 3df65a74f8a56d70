// Package articles turns transcripts and ad-hoc briefs into HTML articles
// written in a journalist's voice.
//
// The model is asked for a {"title","body"} JSON object. Every piece of model
// text is HTML-escaped before it is placed in the fixed article template, and
// the result is parsed back with goquery before it is stored.
package articles
