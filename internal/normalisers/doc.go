// Package normalisers holds the Normaliser implementations that turn raw
// source documents into clean text ready for chunking.
//
// The transcript normaliser handles Markdown, plain text, SRT and WebVTT
// transcripts.
package normalisers
