// Package transcript is the conversation event log.
//
// Every exchange of a conversation is an append-only [Event] tagged with a
// lane: "main" for user and orchestrator messages, "consult:<role>" for one
// role's private thread. Event ids come from a single process-wide counter
// and are the only ordering key, so [Log.Since] yields a stable global order
// that polling clients can resume from any cursor.
//
// A [Journal] subscribes to the event bus and mirrors appended events to one
// JSONL file per conversation. It is an audit trail only and is never read
// back on startup.
package transcript
