// Package tvpaint is an object model over a running TVPaint instance.
//
// TVPaint has one implicit current project, scene, clip and layer, and
// addresses children by position inside their parent. This package exposes
// projects, scenes, clips, layers and sound tracks as facades holding a
// stable id and a reference to their parent. A facade caches nothing: every
// read is a fresh George command, and every operation that depends on the
// current selection first makes its target current.
//
//	c := george.NewClient(transport)
//	project, err := tvpaint.CurrentProject(ctx, c)
//	for scene, err := range project.Scenes(ctx) {
//		...
//	}
//
// Listings are lazy sequences over positions. They are not snapshots: if the
// host's structure changes while a sequence is consumed, ids may be skipped
// or repeated.
//
// Facades are not safe for concurrent use against the same host; the host
// has a single selection shared by every caller.
package tvpaint
