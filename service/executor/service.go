package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"reflect"

	"github.com/viant/structology/conv"

	"github.com/viant/docbridge/extension"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/policy"
)

// Listener is invoked once an operation completes, regardless of whether it
// returned an error.
type Listener func(operation string, input, output interface{}, err error)

// LogListener logs every executed operation with its JSON input and output.
func LogListener(operation string, input, output interface{}, err error) {
	in, _ := json.Marshal(input)
	if err != nil {
		log.Printf("operation %v(%s) failed: %v", operation, in, err)
		return
	}
	out, _ := json.Marshal(output)
	log.Printf("operation %v(%s) => %s", operation, in, out)
}

// Option is used to customise the executor instance.
type Option func(*Service)

// WithListener overrides the listener invoked after every executed operation.
// Passing nil disables the callback entirely.
func WithListener(l Listener) Option {
	return func(s *Service) {
		s.listener = l
	}
}

// Service executes registered operations.
type Service struct {
	actions   *extension.Actions
	converter *conv.Converter
	listener  Listener
}

// Execute resolves operation, converts args to its input type and runs it.
// The policy carried by ctx, if any, is enforced.
func (s *Service) Execute(ctx context.Context, operation string, args map[string]interface{}) (interface{}, error) {
	op, err := s.actions.Resolve(operation)
	if err != nil {
		return nil, err
	}
	if !policy.FromContext(ctx).IsAllowed(op.Name) {
		return nil, fmt.Errorf("%w: %v", ErrOperationNotPermitted, op.Name)
	}
	method, err := op.Service.Method(op.Signature.Name)
	if err != nil {
		return nil, err
	}
	input, err := s.TypedValue(op.Signature.Input, args)
	if err != nil {
		return nil, types.NewValidationError("%v: invalid input: %v", op.Name, err)
	}
	output := newInstancePtr(op.Signature.Output)
	err = method(ctx, input, output)
	if s.listener != nil {
		s.listener(op.Name, input, output, err)
	}
	if err != nil {
		return nil, err
	}
	return output, nil
}

// TypedValue converts value to an instance of aType.
func (s *Service) TypedValue(aType reflect.Type, value map[string]interface{}) (interface{}, error) {
	instance := newInstancePtr(aType)
	if len(value) == 0 {
		return instance, nil
	}
	err := s.converter.Convert(value, instance)
	return instance, err
}

// newInstancePtr creates a new instance pointer of the given type
func newInstancePtr(t reflect.Type) interface{} {
	if t == nil {
		return &struct{}{}
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

// New creates an executor over actions.
func New(actions *extension.Actions, opts ...Option) *Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true

	s := &Service{
		actions:   actions,
		converter: conv.NewConverter(options),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
