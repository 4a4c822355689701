// Package george provides a Go client for the George scripting protocol used
// to drive a running TVPaint Animation instance.
//
// George is a text-based, one-command-at-a-time protocol. A command is a name
// followed by space-separated arguments, and every command produces exactly
// one textual reply. Replies carry no success flag: failures are reported
// through sentinel values (an empty string, "none", "ERROR", or small negative
// integers) whose meaning depends on the command that produced them.
//
//	CLI:  tv_ProjectCurrentId
//	HOST: 0x1f2e3d4c
//	CLI:  tv_SceneEnumId 12
//	HOST: none
//
// # Basic Usage
//
// Dial a transport, wrap it in a Client and send commands:
//
//	transport, err := george.DialWebSocket(ctx, george.DefaultURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := george.NewClient(transport)
//	defer client.Close()
//
//	id, err := george.ProjectCurrentID(ctx, client)
//
// # Sentinels and Error Mapping
//
// Every Command declares which replies mean failure for that command:
//
//	cmd := george.NewCommand("tv_SceneEnumId", 3).Errors(george.SentinelNone)
//
// Client.Send returns a *CommandError when the reply matches a declared
// sentinel. Strict re-kinds that failure (ErrNoObject, ErrFileNotFound,
// ErrInvalidTarget) and Advisory turns it into a *PartialSuccessError for
// commands whose effect has already happened in the host.
//
// # Undo Scopes
//
// Undoable brackets one or more commands so TVPaint records them as a single
// undo step. Nested scopes on the same client collapse into the outermost.
//
// # Reply Parsing
//
// ParseFields splits a reply into tokens (double quotes group tokens that
// contain spaces) and decodes them according to a Schema:
//
//	fields, err := george.ParseFields(reply, george.Schema{
//	    george.IntField("width"),
//	    george.IntField("height"),
//	})
//
// # Thread Safety
//
// The host accepts a single command stream. Client serializes Send so at most
// one command is in flight, but the host's current selection is shared state
// that callers must re-assert before each dependent command.
package george
