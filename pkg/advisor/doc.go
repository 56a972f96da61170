// Package advisor asks a text-generation model for an expert opinion on a
// saved implementation statement.
//
// Two backends implement Client: OllamaClient for a local Ollama server and
// GenAIClient for Google's Gemini API. Service never fails because of the
// model; failures are folded into the returned text.
package advisor
