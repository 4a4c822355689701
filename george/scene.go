package george

import "context"

// SceneEnumID returns the id of the scene at position in the current
// project. ErrNoObject means there is no scene there.
func SceneEnumID(ctx context.Context, c *Client, position int) (int, error) {
	reply, err := Strict(ctx, c, NewCommand("tv_SceneEnumId", position).Errors(SentinelNone),
		WithKind(ErrNoObject), WithMessage("No scene at provided position"))
	if err != nil {
		return 0, err
	}
	return reply.Int()
}

// SceneCurrentID returns the id of the current scene.
func SceneCurrentID(ctx context.Context, c *Client) (int, error) {
	return sendInt(ctx, c, NewCommand("tv_SceneCurrentId"))
}

// SceneMove moves a scene to position in the current project.
func SceneMove(ctx context.Context, c *Client, sceneID, position int) error {
	return Undoable(ctx, c, "SceneMove", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_SceneMove", sceneID, position))
	})
}

// SceneNew creates a scene, with one clip, after the scene of the current clip.
func SceneNew(ctx context.Context, c *Client) error {
	return Undoable(ctx, c, "SceneNew", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_SceneNew"))
	})
}

// SceneDuplicate duplicates a scene. The copy is inserted right after it.
func SceneDuplicate(ctx context.Context, c *Client, sceneID int) error {
	return Undoable(ctx, c, "SceneDuplicate", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_SceneDuplicate", sceneID))
	})
}

// SceneClose removes a scene and its clips.
func SceneClose(ctx context.Context, c *Client, sceneID int) error {
	return Undoable(ctx, c, "SceneClose", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_SceneClose", sceneID))
	})
}
