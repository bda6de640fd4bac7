// Package nlfilter implements the natural-language filter collaborator: a
// remote service that receives a question and one entity collection and
// answers with the subset of records matching the question.
//
// Two transports are provided. The proxy mode posts {question, data} to an
// endpoint that answers with a JSON array. The completion mode talks to an
// OpenAI compatible chat completion API and parses the assistant message
// as a JSON array.
package nlfilter
