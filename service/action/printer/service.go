package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/model/types"
)

const name = "printer"

// Exporter renders a subtree.
type Exporter interface {
	Export(ctx context.Context, id, format string) (*command.ExportOutput, error)
}

// Service prints messages and rendered subtrees.
type Service struct {
	exporter Exporter
	writer   io.Writer
}

type Input struct {
	Message string `json:"message,omitempty"`
	NodeID  string `json:"nodeId,omitempty"`
	Format  string `json:"format,omitempty"`
	Tree    bool   `json:"tree,omitempty"`
}

type Output struct {
	Text string `json:"text"`
}

// New creates a printer writing to w (stdout when nil).
func New(exporter Exporter, w io.Writer) *Service {
	if w == nil {
		w = os.Stdout
	}
	return &Service{exporter: exporter, writer: w}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:          "print",
			Description:   "Prints the message and, with tree set, the subtree of nodeId (page when empty).",
			Deterministic: true,
			Input:         reflect.TypeOf(&Input{}),
			Output:        reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "print":
		return s.print, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) print(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	var b strings.Builder
	if input.Message != "" {
		b.WriteString(input.Message)
		b.WriteByte('\n')
	}
	if input.Tree {
		format := input.Format
		if format == "" {
			format = command.FormatYAML
		}
		exported, err := s.exporter.Export(ctx, input.NodeID, format)
		if err != nil {
			return err
		}
		b.Write(exported.Data)
	}
	output.Text = b.String()
	_, err := fmt.Fprint(s.writer, output.Text)
	return err
}
