// Package answer turns retrieved passages and a question into a grounded answer.
//
// The Orchestrator stuffs every passage into one context block of the system
// instruction, sends the question as the user message and makes exactly one
// Generator call. Generation failures never escape as errors: they come back
// as a core.Answer whose Err is set and whose Text is displayable.
package answer
