package host

import (
	"context"

	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/model/types"
)

// Applier writes a patch onto a node in two phases. Prepare may block on
// resources and must not mutate the node; Apply validates then assigns in
// the kind's required order. A failed phase leaves the node untouched.
type Applier interface {
	Prepare(ctx context.Context, node *Node, patch *tree.Patch) error
	Apply(node *Node, patch *tree.Patch) error
}

func newAppliers(images *ImageStore, fonts *FontCache) map[tree.Kind]Applier {
	base := &baseApplier{images: images}
	return map[tree.Kind]Applier{
		tree.KindPage:      &pageApplier{},
		tree.KindFrame:     &frameApplier{baseApplier: base},
		tree.KindGroup:     base,
		tree.KindRectangle: base,
		tree.KindEllipse:   base,
		tree.KindLine:      base,
		tree.KindText:      &textApplier{baseApplier: base, fonts: fonts},
	}
}

type pageApplier struct{}

func (a *pageApplier) Prepare(context.Context, *Node, *tree.Patch) error { return nil }

func (a *pageApplier) Apply(node *Node, patch *tree.Patch) error {
	if patch.Name != nil {
		node.Props.Name = *patch.Name
	}
	return nil
}

type baseApplier struct {
	images *ImageStore
}

// Prepare moves inline image bytes to the image store and checks that image
// hashes belong to the session.
func (a *baseApplier) Prepare(ctx context.Context, _ *Node, patch *tree.Patch) error {
	for _, paints := range []*[]tree.Paint{patch.Fills, patch.Strokes} {
		if paints == nil {
			continue
		}
		for i := range *paints {
			paint := &(*paints)[i]
			if paint.Type != tree.PaintImage {
				continue
			}
			if len(paint.ImageBytes) > 0 {
				hash, err := a.images.Put(ctx, paint.ImageBytes)
				if err != nil {
					return err
				}
				paint.ImageHash, paint.ImageBytes = hash, nil
				continue
			}
			if ok, _ := a.images.Has(ctx, paint.ImageHash); !ok {
				return types.NewNotFoundError("image %v is unknown to this session", paint.ImageHash)
			}
		}
	}
	return nil
}

func (a *baseApplier) Apply(node *Node, patch *tree.Patch) error {
	applyCommon(&node.Props, patch)
	return nil
}

func applyCommon(props *tree.Properties, patch *tree.Patch) {
	setString(&props.Name, patch.Name)
	setBool(&props.Visible, patch.Visible)
	setBool(&props.Locked, patch.Locked)
	setFloat(&props.Opacity, patch.Opacity)
	setFloat(&props.X, patch.X)
	setFloat(&props.Y, patch.Y)
	setFloat(&props.Width, patch.Width)
	setFloat(&props.Height, patch.Height)
	setFloat(&props.Rotation, patch.Rotation)
	if patch.Fills != nil {
		props.Fills = clonePaints(*patch.Fills)
	}
	if patch.Strokes != nil {
		props.Strokes = clonePaints(*patch.Strokes)
	}
	setFloat(&props.StrokeWeight, patch.StrokeWeight)
	setFloat(&props.CornerRadius, patch.CornerRadius)
}

type frameApplier struct {
	*baseApplier
}

// Apply assigns layoutMode before any layout property. Layout properties
// require an auto-layout mode, except for full state replacement.
func (a *frameApplier) Apply(node *Node, patch *tree.Patch) error {
	mode := node.Props.LayoutMode
	if patch.LayoutMode != nil {
		mode = *patch.LayoutMode
	}
	if patch.HasLayout() && !patch.Full && (mode == "" || mode == tree.LayoutNone) {
		return types.NewValidationError("frame %v: layout properties require layoutMode HORIZONTAL or VERTICAL", node.ID)
	}
	applyCommon(&node.Props, patch)
	setString(&node.Props.LayoutMode, patch.LayoutMode)
	setFloat(&node.Props.ItemSpacing, patch.ItemSpacing)
	if patch.Padding != nil || patch.Full {
		node.Props.Padding = clonePadding(patch.Padding)
	}
	setString(&node.Props.PrimaryAxisAlign, patch.PrimaryAxisAlign)
	setString(&node.Props.CounterAxisAlign, patch.CounterAxisAlign)
	return nil
}

type textApplier struct {
	*baseApplier
	fonts *FontCache
}

func effectiveFont(node *Node, patch *tree.Patch) (string, string) {
	family, style := node.Props.FontFamily, node.Props.FontStyle
	if patch.FontFamily != nil {
		family = *patch.FontFamily
	}
	if patch.FontStyle != nil {
		style = *patch.FontStyle
	}
	return family, style
}

// Prepare loads the font the node will use once the patch is applied.
func (a *textApplier) Prepare(ctx context.Context, node *Node, patch *tree.Patch) error {
	if err := a.baseApplier.Prepare(ctx, node, patch); err != nil {
		return err
	}
	if !patch.HasText() {
		return nil
	}
	family, style := effectiveFont(node, patch)
	return a.fonts.Prepare(ctx, family, style)
}

// Apply assigns font fields before characters.
func (a *textApplier) Apply(node *Node, patch *tree.Patch) error {
	if patch.HasText() {
		family, style := effectiveFont(node, patch)
		if !a.fonts.Ready(family, style) {
			return types.NewValidationError("text %v: font %v %v was not prepared", node.ID, family, style)
		}
	}
	applyCommon(&node.Props, patch)
	setString(&node.Props.FontFamily, patch.FontFamily)
	setString(&node.Props.FontStyle, patch.FontStyle)
	setFloat(&node.Props.FontSize, patch.FontSize)
	setFloat(&node.Props.LineHeight, patch.LineHeight)
	setString(&node.Props.TextAlign, patch.TextAlign)
	setString(&node.Props.Characters, patch.Characters)
	return nil
}

func setString(dest *string, value *string) {
	if value != nil {
		*dest = *value
	}
}

func setFloat(dest *float64, value *float64) {
	if value != nil {
		*dest = *value
	}
}

func setBool(dest *bool, value *bool) {
	if value != nil {
		*dest = *value
	}
}

func clonePaints(paints []tree.Paint) []tree.Paint {
	if paints == nil {
		return nil
	}
	ret := make([]tree.Paint, len(paints))
	copy(ret, paints)
	for i := range ret {
		ret[i].ImageBytes = nil
	}
	return ret
}

func clonePadding(padding *tree.Padding) *tree.Padding {
	if padding == nil {
		return nil
	}
	ret := *padding
	return &ret
}
