// Package model normalizes access to generative-language providers. The
// pipeline issues a handful of fixed prompt-template calls (query breakdown,
// document summarization, report consolidation); adapters for Gemini, OpenAI
// and Anthropic live in subpackages and all speak the Request/Response types
// defined here.
package model
