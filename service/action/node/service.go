package node

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/docbridge/model/tree"
	"github.com/viant/docbridge/model/types"
)

const name = "node"

// Document is the subset of host primitives node operations use.
type Document interface {
	Create(ctx context.Context, kind tree.Kind, parentID string, props map[string]interface{}) (string, error)
	Update(ctx context.Context, id string, props map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Reparent(ctx context.Context, id, parentID string, index *int) error
	Serialize(ctx context.Context, id string, depth int) (*tree.SerializedNode, error)
}

// Service exposes single-node operations to pipelines.
type Service struct {
	document Document
}

// New creates a node service
func New(document Document) *Service {
	return &Service{document: document}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

var createKinds = map[string]tree.Kind{
	"createframe":     tree.KindFrame,
	"createtext":      tree.KindText,
	"createrectangle": tree.KindRectangle,
	"createellipse":   tree.KindEllipse,
	"createline":      tree.KindLine,
	"creategroup":     tree.KindGroup,
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	create := func(method string, kind tree.Kind) types.Signature {
		return types.Signature{
			Name:          method,
			Description:   "Creates a " + strings.ToLower(string(kind)) + " node under parentId (page when empty).",
			Deterministic: true,
			Input:         reflect.TypeOf(&CreateInput{}),
			Output:        reflect.TypeOf(&CreateOutput{}),
		}
	}
	return []types.Signature{
		create("createFrame", tree.KindFrame),
		create("createText", tree.KindText),
		create("createRectangle", tree.KindRectangle),
		create("createEllipse", tree.KindEllipse),
		create("createLine", tree.KindLine),
		create("createGroup", tree.KindGroup),
		{
			Name:          "update",
			Description:   "Applies properties to an existing node.",
			Deterministic: true,
			Input:         reflect.TypeOf(&UpdateInput{}),
			Output:        reflect.TypeOf(&UpdateOutput{}),
		},
		{
			Name:          "delete",
			Description:   "Deletes a node and its descendants.",
			Deterministic: true,
			Input:         reflect.TypeOf(&DeleteInput{}),
			Output:        reflect.TypeOf(&DeleteOutput{}),
		},
		{
			Name:          "reparent",
			Description:   "Moves a node under a new parent at an optional index.",
			Deterministic: true,
			Input:         reflect.TypeOf(&ReparentInput{}),
			Output:        reflect.TypeOf(&ReparentOutput{}),
		},
		{
			Name:          "inspect",
			Description:   "Returns a snapshot of a node subtree.",
			Deterministic: true,
			Input:         reflect.TypeOf(&InspectInput{}),
			Output:        reflect.TypeOf(&InspectOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	lower := strings.ToLower(name)
	if kind, ok := createKinds[lower]; ok {
		return s.creator(kind), nil
	}
	switch lower {
	case "update":
		return s.update, nil
	case "delete":
		return s.delete, nil
	case "reparent":
		return s.reparent, nil
	case "inspect":
		return s.inspect, nil
	}
	return nil, types.NewMethodNotFoundError(name)
}

func (s *Service) creator(kind tree.Kind) types.Executable {
	return func(ctx context.Context, in, out interface{}) error {
		input, ok := in.(*CreateInput)
		if !ok {
			return types.NewInvalidInputError(in)
		}
		output, ok := out.(*CreateOutput)
		if !ok {
			return types.NewInvalidOutputError(out)
		}
		id, err := s.document.Create(ctx, kind, input.ParentID, input.Properties)
		if err != nil {
			return err
		}
		output.NodeID, output.Kind = id, kind
		return nil
	}
}

func (s *Service) update(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*UpdateInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*UpdateOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	if err := s.document.Update(ctx, input.NodeID, input.Properties); err != nil {
		return err
	}
	output.NodeID = input.NodeID
	return nil
}

func (s *Service) delete(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*DeleteInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*DeleteOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	if err := s.document.Delete(ctx, input.NodeID); err != nil {
		return err
	}
	output.NodeID, output.Deleted = input.NodeID, true
	return nil
}

func (s *Service) reparent(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ReparentInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ReparentOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	if err := s.document.Reparent(ctx, input.NodeID, input.ParentID, input.Index); err != nil {
		return err
	}
	output.NodeID, output.ParentID = input.NodeID, input.ParentID
	return nil
}

func (s *Service) inspect(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*InspectInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*InspectOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	depth := -1
	if input.Depth != nil {
		depth = *input.Depth
	}
	node, err := s.document.Serialize(ctx, input.NodeID, depth)
	if err != nil {
		return err
	}
	output.NodeID, output.Node = input.NodeID, node
	return nil
}
