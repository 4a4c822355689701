package george

import "context"

// LayerInfo is the decoded reply of tv_LayerInfo.
type LayerInfo struct {
	ID         int
	Visible    bool
	Position   int
	Opacity    int
	Name       string
	Type       LayerType
	FirstFrame int
	LastFrame  int
	Selected   bool
	Editable   bool
	Stencil    StencilMode
}

var layerInfoSchema = Schema{
	Skipped("id"),
	BoolField("visibility"),
	IntField("position"),
	IntField("opacity"),
	StringField("name"),
	EnumField("type", LayerTypes...),
	IntField("first_frame"),
	IntField("last_frame"),
	BoolField("selected"),
	BoolField("editable"),
	EnumField("stencil", StencilModes...),
}

// LayerGetID returns the id of the layer at position in the current clip.
// ErrNoObject means there is no layer there.
func LayerGetID(ctx context.Context, c *Client, position int) (int, error) {
	reply, err := Strict(ctx, c, NewCommand("tv_LayerGetID", position).Errors(SentinelNone),
		WithKind(ErrNoObject), WithMessage("No layer at provided position"))
	if err != nil {
		return 0, err
	}
	return reply.Int()
}

// LayerCurrentID returns the id of the current layer.
func LayerCurrentID(ctx context.Context, c *Client) (int, error) {
	return sendInt(ctx, c, NewCommand("tv_LayerCurrentID"))
}

// LayerSet makes a layer of the current clip current.
func LayerSet(ctx context.Context, c *Client, layerID int) error {
	return Exec(ctx, c, NewCommand("tv_LayerSet", layerID))
}

// GetLayerInfo returns the description of a layer of the current clip.
func GetLayerInfo(ctx context.Context, c *Client, layerID int) (LayerInfo, error) {
	reply, err := Strict(ctx, c, NewCommand("tv_LayerInfo", layerID).Errors(SentinelEmpty),
		WithKind(ErrNoObject), WithMessage("No layer with provided id"))
	if err != nil {
		return LayerInfo{}, err
	}
	f, err := ParseFields(string(reply), layerInfoSchema)
	if err != nil {
		return LayerInfo{}, err
	}
	return LayerInfo{
		ID:         layerID,
		Visible:    f.Bool("visibility"),
		Position:   f.Int("position"),
		Opacity:    f.Int("opacity"),
		Name:       f.String("name"),
		Type:       Get[LayerType](f, "type"),
		FirstFrame: f.Int("first_frame"),
		LastFrame:  f.Int("last_frame"),
		Selected:   f.Bool("selected"),
		Editable:   f.Bool("editable"),
		Stencil:    Get[StencilMode](f, "stencil"),
	}, nil
}

// LayerCreate creates a layer in the current clip and returns its id.
func LayerCreate(ctx context.Context, c *Client, name string) (int, error) {
	return UndoableValue(ctx, c, "LayerCreate", func(ctx context.Context) (int, error) {
		return sendInt(ctx, c, NewCommand("tv_LayerCreate", name))
	})
}

// LayerDuplicate duplicates the current layer and returns the copy's id.
func LayerDuplicate(ctx context.Context, c *Client, name string) (int, error) {
	return UndoableValue(ctx, c, "LayerDuplicate", func(ctx context.Context) (int, error) {
		return sendInt(ctx, c, NewCommand("tv_LayerDuplicate", name))
	})
}

// LayerKill removes a layer.
func LayerKill(ctx context.Context, c *Client, layerID int) error {
	return Undoable(ctx, c, "LayerKill", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_LayerKill", layerID))
	})
}

// LayerRename renames a layer.
func LayerRename(ctx context.Context, c *Client, layerID int, name string) error {
	return Undoable(ctx, c, "LayerRename", func(ctx context.Context) error {
		return Exec(ctx, c, NewCommand("tv_LayerRename", layerID, name))
	})
}
