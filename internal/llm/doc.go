// Package llm provides the external language-model adapter for message
// analysis. It supports OpenAI-compatible chat-completions endpoints, with
// rate limiting, hard timeouts, and soft-failure semantics: any transport,
// auth, or parsing problem degrades to a nil result so the caller can fall
// back to the local classifiers.
package llm
