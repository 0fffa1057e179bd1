// Package agent implements the conversational dispatcher.
//
// The dispatcher holds no state of its own: it receives the running
// transcript and the new user utterance, lets a language model decide which
// of the registered tools to invoke, executes them, and returns the final
// natural-language reply. The model is reached through the narrow Completer
// interface so tests can script tool-call sequences without a network.
//
// Every failure inside a turn is converted at this boundary into a plain
// "Error running agent: <message>" reply; a turn never crashes the session.
package agent
