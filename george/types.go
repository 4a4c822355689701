package george

import (
	"fmt"
	"strconv"
)

// FieldOrder is the interlacing mode of a project.
type FieldOrder string

const (
	FieldOrderNone  FieldOrder = "none"
	FieldOrderLower FieldOrder = "lower"
	FieldOrderUpper FieldOrder = "upper"
)

// FieldOrders lists every FieldOrder.
var FieldOrders = []FieldOrder{FieldOrderNone, FieldOrderLower, FieldOrderUpper}

func (f FieldOrder) String() string { return string(f) }

// ResizeOption selects how tv_ResizePage fits the old image in the new page.
type ResizeOption int

const (
	ResizeEmpty ResizeOption = iota
	ResizeCrop
	ResizeStretch
)

func (r ResizeOption) String() string { return strconv.Itoa(int(r)) }

// BackgroundMode is the project background display mode.
type BackgroundMode string

const (
	BackgroundCheck BackgroundMode = "check"
	BackgroundColor BackgroundMode = "color"
	BackgroundNone  BackgroundMode = "none"
)

// BackgroundModes lists every BackgroundMode.
var BackgroundModes = []BackgroundMode{BackgroundCheck, BackgroundColor, BackgroundNone}

func (b BackgroundMode) String() string { return string(b) }

// LayerType is the kind of a layer.
type LayerType string

const (
	LayerImage    LayerType = "image"
	LayerSequence LayerType = "sequence"
	LayerXSheet   LayerType = "xsheet"
	LayerSound    LayerType = "sound"
	LayerCamera   LayerType = "camera"
	LayerCtg      LayerType = "ctg"
)

// LayerTypes lists every LayerType.
var LayerTypes = []LayerType{LayerImage, LayerSequence, LayerXSheet, LayerSound, LayerCamera, LayerCtg}

func (l LayerType) String() string { return string(l) }

// StencilMode is the stencil state of a layer.
type StencilMode string

const (
	StencilOn     StencilMode = "on"
	StencilOff    StencilMode = "off"
	StencilNone   StencilMode = "none"
	StencilInvert StencilMode = "invert"
)

// StencilModes lists every StencilMode.
var StencilModes = []StencilMode{StencilOn, StencilOff, StencilNone, StencilInvert}

func (s StencilMode) String() string { return string(s) }

// RGBColor is an 8-bit per channel color.
type RGBColor struct {
	R, G, B int
}

func (c RGBColor) String() string {
	return fmt.Sprintf("%d %d %d", c.R, c.G, c.B)
}

// Args returns the color as three command arguments.
func (c RGBColor) Args() []any {
	return []any{c.R, c.G, c.B}
}

// RGBField decodes three consecutive integer tokens as an RGBColor.
func RGBField(name string) Field {
	return GroupField(name, 3, func(t []string) (any, error) {
		var rgb [3]int
		for i, tok := range t {
			v, err := strconv.Atoi(tok)
			if err != nil || v < 0 || v > 255 {
				return nil, newCastError(name, tok, "color channel")
			}
			rgb[i] = v
		}
		return RGBColor{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
	})
}

// SoundInfo describes one sound track of a project or clip.
type SoundInfo struct {
	Offset       float64
	Volume       float64
	Mute         bool
	FadeInStart  float64
	FadeInStop   float64
	FadeOutStart float64
	FadeOutStop  float64
	Path         string
	SoundIn      float64
	SoundOut     float64
	ColorIndex   int
}

var soundSchema = Schema{
	FloatField("offset"),
	FloatField("volume"),
	BoolField("mute"),
	FloatField("fade_in_start"),
	FloatField("fade_in_stop"),
	FloatField("fade_out_start"),
	FloatField("fade_out_stop"),
	PathField("path"),
	FloatField("sound_in"),
	FloatField("sound_out"),
	IntField("color_index"),
}

func parseSoundInfo(reply Reply) (SoundInfo, error) {
	f, err := ParseFields(string(reply), soundSchema)
	if err != nil {
		return SoundInfo{}, err
	}
	return SoundInfo{
		Offset:       f.Float("offset"),
		Volume:       f.Float("volume"),
		Mute:         f.Bool("mute"),
		FadeInStart:  f.Float("fade_in_start"),
		FadeInStop:   f.Float("fade_in_stop"),
		FadeOutStart: f.Float("fade_out_start"),
		FadeOutStop:  f.Float("fade_out_stop"),
		Path:         f.String("path"),
		SoundIn:      f.Float("sound_in"),
		SoundOut:     f.Float("sound_out"),
		ColorIndex:   f.Int("color_index"),
	}, nil
}
