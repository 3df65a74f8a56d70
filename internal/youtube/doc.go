// Package youtube lists channel uploads through the YouTube Data API v3 and
// reads public captions from the watch page.
//
// Channel listing resolves the channel's uploads playlist and pages through
// it newest first. Captions are located in the ytInitialPlayerResponse JSON
// embedded in the watch page; the best track for the configured language is
// downloaded as timedtext XML and flattened to plain text.
package youtube
