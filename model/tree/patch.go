package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/docbridge/model/types"
)

// Patch carries the properties an update sets. Nil fields are left as is.
// A Full patch replaces the complete state, nil fields included.
type Patch struct {
	Name         *string  `json:"name,omitempty"`
	Visible      *bool    `json:"visible,omitempty"`
	Locked       *bool    `json:"locked,omitempty"`
	Opacity      *float64 `json:"opacity,omitempty"`
	X            *float64 `json:"x,omitempty"`
	Y            *float64 `json:"y,omitempty"`
	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	Rotation     *float64 `json:"rotation,omitempty"`
	Fills        *[]Paint `json:"fills,omitempty"`
	Strokes      *[]Paint `json:"strokes,omitempty"`
	StrokeWeight *float64 `json:"strokeWeight,omitempty"`
	CornerRadius *float64 `json:"cornerRadius,omitempty"`

	LayoutMode       *string  `json:"layoutMode,omitempty"`
	ItemSpacing      *float64 `json:"itemSpacing,omitempty"`
	Padding          *Padding `json:"padding,omitempty"`
	PrimaryAxisAlign *string  `json:"primaryAxisAlign,omitempty"`
	CounterAxisAlign *string  `json:"counterAxisAlign,omitempty"`

	Characters *string  `json:"characters,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`
	FontStyle  *string  `json:"fontStyle,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	LineHeight *float64 `json:"lineHeight,omitempty"`
	TextAlign  *string  `json:"textAlign,omitempty"`

	Full bool `json:"-"`
}

// HasLayout reports whether the patch touches layout-specific properties.
func (p *Patch) HasLayout() bool {
	return p.ItemSpacing != nil || p.Padding != nil || p.PrimaryAxisAlign != nil || p.CounterAxisAlign != nil
}

// HasFont reports whether the patch touches font properties.
func (p *Patch) HasFont() bool {
	return p.FontFamily != nil || p.FontStyle != nil || p.FontSize != nil
}

// HasText reports whether the patch touches text content or typography.
func (p *Patch) HasText() bool {
	return p.Characters != nil || p.HasFont() || p.LineHeight != nil || p.TextAlign != nil
}

// DecodePatch validates a generic property map against the kind schema and
// converts it into a typed Patch.
func DecodePatch(kind Kind, props map[string]interface{}) (*Patch, error) {
	if _, ok := Schema[kind]; !ok {
		return nil, types.NewValidationError("unsupported node kind %q", kind)
	}
	normalized := make(map[string]interface{}, len(props))
	for key, value := range props {
		if strings.EqualFold(key, "fill") {
			fills, err := fillShorthand(value)
			if err != nil {
				return nil, err
			}
			key, value = "fills", fills
		}
		canonical, ok := CanonicalKey(kind, key)
		if !ok {
			return nil, types.NewValidationError("property %q is not supported on %v, supported: %v", key, kind, strings.Join(AllowedKeys(kind), ","))
		}
		normalized[canonical] = value
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, types.NewValidationError("invalid properties: %v", err)
	}
	ret := &Patch{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(ret); err != nil {
		return nil, types.NewValidationError("invalid properties for %v: %v", kind, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

func fillShorthand(value interface{}) ([]Paint, error) {
	color, ok := value.(string)
	if !ok {
		return nil, types.NewValidationError("fill shorthand expects a color string, got %T", value)
	}
	return []Paint{{Type: PaintSolid, Color: color, Opacity: 1}}, nil
}

// Validate checks value ranges and enumerations.
func (p *Patch) Validate() error {
	if p.Opacity != nil && (*p.Opacity < 0 || *p.Opacity > 1) {
		return types.NewValidationError("opacity %v out of range [0,1]", *p.Opacity)
	}
	if p.Width != nil && *p.Width < 0 {
		return types.NewValidationError("width must be >= 0")
	}
	if p.Height != nil && *p.Height < 0 {
		return types.NewValidationError("height must be >= 0")
	}
	if p.FontSize != nil && *p.FontSize <= 0 {
		return types.NewValidationError("fontSize must be > 0")
	}
	if p.LayoutMode != nil {
		switch *p.LayoutMode {
		case LayoutNone, LayoutHorizontal, LayoutVertical:
		default:
			return types.NewValidationError("unsupported layoutMode %q", *p.LayoutMode)
		}
	}
	for _, paints := range []*[]Paint{p.Fills, p.Strokes} {
		if paints == nil {
			continue
		}
		for i, paint := range *paints {
			if err := validatePaint(paint); err != nil {
				return fmt.Errorf("paint[%d]: %w", i, err)
			}
		}
	}
	return nil
}

func validatePaint(paint Paint) error {
	switch paint.Type {
	case PaintSolid:
		if paint.Color == "" {
			return types.NewValidationError("solid paint requires color")
		}
	case PaintImage:
		if paint.ImageHash == "" && len(paint.ImageBytes) == 0 {
			return types.NewValidationError("image paint requires imageBytes or imageHash")
		}
	default:
		return types.NewValidationError("unsupported paint type %q", paint.Type)
	}
	return nil
}

// PatchOf returns a Full patch reproducing props for the kind schema.
func PatchOf(kind Kind, props Properties) *Patch {
	p := props.Clone()
	allowed := Schema[kind]
	ret := &Patch{Full: true}
	ret.Name = &p.Name
	if kind == KindPage {
		return ret
	}
	ret.Visible, ret.Locked, ret.Opacity = &p.Visible, &p.Locked, &p.Opacity
	ret.X, ret.Y, ret.Width, ret.Height, ret.Rotation = &p.X, &p.Y, &p.Width, &p.Height, &p.Rotation
	if allowed["fills"] {
		ret.Fills, ret.Strokes, ret.StrokeWeight = &p.Fills, &p.Strokes, &p.StrokeWeight
	}
	if allowed["cornerRadius"] {
		ret.CornerRadius = &p.CornerRadius
	}
	if allowed["layoutMode"] {
		ret.LayoutMode, ret.ItemSpacing, ret.Padding = &p.LayoutMode, &p.ItemSpacing, p.Padding
		ret.PrimaryAxisAlign, ret.CounterAxisAlign = &p.PrimaryAxisAlign, &p.CounterAxisAlign
	}
	if allowed["characters"] {
		ret.Characters, ret.FontFamily, ret.FontStyle = &p.Characters, &p.FontFamily, &p.FontStyle
		ret.FontSize, ret.LineHeight, ret.TextAlign = &p.FontSize, &p.LineHeight, &p.TextAlign
	}
	return ret
}
