package tree

// Layout modes.
const (
	LayoutNone       = "NONE"
	LayoutHorizontal = "HORIZONTAL"
	LayoutVertical   = "VERTICAL"
)

// Paint types.
const (
	PaintSolid = "SOLID"
	PaintImage = "IMAGE"
)

// Paint describes a fill or stroke. ImageBytes is accepted on input only; the
// host stores the bytes and keeps ImageHash instead.
type Paint struct {
	Type       string  `json:"type" yaml:"type"`
	Color      string  `json:"color,omitempty" yaml:"color,omitempty"`
	Opacity    float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	ImageHash  string  `json:"imageHash,omitempty" yaml:"imageHash,omitempty"`
	ScaleMode  string  `json:"scaleMode,omitempty" yaml:"scaleMode,omitempty"`
	ImageBytes []byte  `json:"imageBytes,omitempty" yaml:"-"`
}

// Padding of an auto-layout frame.
type Padding struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Properties is the full reconstructible state of a node.
type Properties struct {
	Name         string  `json:"name,omitempty" yaml:"name,omitempty"`
	Visible      bool    `json:"visible" yaml:"visible"`
	Locked       bool    `json:"locked,omitempty" yaml:"locked,omitempty"`
	Opacity      float64 `json:"opacity" yaml:"opacity"`
	X            float64 `json:"x" yaml:"x"`
	Y            float64 `json:"y" yaml:"y"`
	Width        float64 `json:"width" yaml:"width"`
	Height       float64 `json:"height" yaml:"height"`
	Rotation     float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Fills        []Paint `json:"fills,omitempty" yaml:"fills,omitempty"`
	Strokes      []Paint `json:"strokes,omitempty" yaml:"strokes,omitempty"`
	StrokeWeight float64 `json:"strokeWeight,omitempty" yaml:"strokeWeight,omitempty"`
	CornerRadius float64 `json:"cornerRadius,omitempty" yaml:"cornerRadius,omitempty"`

	LayoutMode       string   `json:"layoutMode,omitempty" yaml:"layoutMode,omitempty"`
	ItemSpacing      float64  `json:"itemSpacing,omitempty" yaml:"itemSpacing,omitempty"`
	Padding          *Padding `json:"padding,omitempty" yaml:"padding,omitempty"`
	PrimaryAxisAlign string   `json:"primaryAxisAlign,omitempty" yaml:"primaryAxisAlign,omitempty"`
	CounterAxisAlign string   `json:"counterAxisAlign,omitempty" yaml:"counterAxisAlign,omitempty"`

	Characters string  `json:"characters,omitempty" yaml:"characters,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	FontStyle  string  `json:"fontStyle,omitempty" yaml:"fontStyle,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	LineHeight float64 `json:"lineHeight,omitempty" yaml:"lineHeight,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty" yaml:"textAlign,omitempty"`
}

// DefaultProperties returns the state of a freshly created node of kind.
func DefaultProperties(kind Kind) Properties {
	ret := Properties{Visible: true, Opacity: 1}
	switch kind {
	case KindFrame:
		ret.Width, ret.Height = 100, 100
		ret.LayoutMode = LayoutNone
		ret.Fills = []Paint{{Type: PaintSolid, Color: "#FFFFFF", Opacity: 1}}
	case KindRectangle, KindEllipse:
		ret.Width, ret.Height = 100, 100
		ret.Fills = []Paint{{Type: PaintSolid, Color: "#D9D9D9", Opacity: 1}}
	case KindLine:
		ret.Width = 100
		ret.Strokes = []Paint{{Type: PaintSolid, Color: "#000000", Opacity: 1}}
		ret.StrokeWeight = 1
	case KindText:
		ret.FontFamily, ret.FontStyle, ret.FontSize = "Inter", "Regular", 12
		ret.Fills = []Paint{{Type: PaintSolid, Color: "#000000", Opacity: 1}}
	}
	return ret
}

// Clone returns a deep copy.
func (p *Properties) Clone() Properties {
	ret := *p
	ret.Fills = clonePaints(p.Fills)
	ret.Strokes = clonePaints(p.Strokes)
	if p.Padding != nil {
		padding := *p.Padding
		ret.Padding = &padding
	}
	return ret
}

func clonePaints(paints []Paint) []Paint {
	if paints == nil {
		return nil
	}
	ret := make([]Paint, len(paints))
	copy(ret, paints)
	for i := range ret {
		if ret[i].ImageBytes != nil {
			ret[i].ImageBytes = append([]byte(nil), ret[i].ImageBytes...)
		}
	}
	return ret
}
