package checkpoint

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/docbridge/model/types"
	store "github.com/viant/docbridge/service/checkpoint"
)

const name = "checkpoint"

// Service exposes the checkpoint registry as named operations.
type Service struct {
	store *store.Store
}

type SaveInput struct {
	RootID string `json:"rootId"`
	Label  string `json:"label"`
}

type SaveOutput struct {
	Label  string `json:"label"`
	RootID string `json:"rootId"`
	Nodes  int    `json:"nodes"`
}

type RestoreInput struct {
	Label string `json:"label"`
}

type RestoreOutput struct {
	Label  string `json:"label"`
	RootID string `json:"rootId"`
}

type ListInput struct{}

type ListOutput struct {
	Labels []string `json:"labels"`
}

func New(store *store.Store) *Service {
	return &Service{store: store}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "save",
			Description: "Captures the subtree of rootId under label.",
			Input:       reflect.TypeOf(&SaveInput{}),
			Output:      reflect.TypeOf(&SaveOutput{}),
		},
		{
			Name:        "restore",
			Description: "Replaces the checkpoint root subtree with the stored snapshot.",
			Input:       reflect.TypeOf(&RestoreInput{}),
			Output:      reflect.TypeOf(&RestoreOutput{}),
		},
		{
			Name:          "list",
			Description:   "Lists checkpoint labels.",
			Deterministic: true,
			Input:         reflect.TypeOf(&ListInput{}),
			Output:        reflect.TypeOf(&ListOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "save":
		return s.save, nil
	case "restore":
		return s.restore, nil
	case "list":
		return s.list, nil
	}
	return nil, types.NewMethodNotFoundError(name)
}

func (s *Service) save(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SaveInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SaveOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	saved, err := s.store.Save(ctx, input.RootID, input.Label)
	if err != nil {
		return err
	}
	output.Label, output.RootID, output.Nodes = saved.Label, saved.RootID, saved.Snapshot.Count()
	return nil
}

func (s *Service) restore(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*RestoreInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*RestoreOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	restored, err := s.store.Restore(ctx, input.Label)
	if err != nil {
		return err
	}
	output.Label, output.RootID = restored.Label, restored.RootID
	return nil
}

func (s *Service) list(ctx context.Context, _, out interface{}) error {
	output, ok := out.(*ListOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	labels, err := s.store.Labels(ctx)
	if err != nil {
		return err
	}
	output.Labels = labels
	return nil
}
