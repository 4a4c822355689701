// Package georgetest provides test doubles for code that talks George.
//
// Script is a transport that answers from a table of canned replies and
// records every line it receives. Host is a simulated TVPaint instance that
// keeps projects, scenes, clips, layers, sounds and the current selection,
// and answers George commands with the host's sentinel conventions. Bridge
// serves any transport over a Unix socket using the CMD:/OK:/ERR: line
// framing, for tests of the socket transport and the CLI.
package georgetest
