// Package publish delivers finished articles to an external CMS bridge.
//
// WebhookSink posts each article as JSON to a configured URL and records the
// reference returned by the bridge. Publisher is the optional last pipeline
// stage: it picks articles with a summary and art that have no published
// reference yet.
package publish
