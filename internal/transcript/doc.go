// Package transcript defines the word and segment records produced by the
// transcription collaborator and the JSON documents that persist them.
//
// Documents are written per granularity: `{stem}.sentence.json` carries
// segments and `{stem}.word.json` carries words. Window selects the tokens
// strictly contained in a time range.
package transcript
