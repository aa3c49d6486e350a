package extension

import (
	"sort"
	"strings"
	"sync"

	"github.com/viant/docbridge/model/types"
)

// Actions provides action service
type Actions struct {
	services map[string]types.Service
	mux      sync.RWMutex
}

// Lookup returns a service by name
func (s *Actions) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[name]
}

// Register registers a service
func (s *Actions) Register(service types.Service) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.services[service.Name()] = service
}

// Operation is a resolved "service.method" reference.
type Operation struct {
	Name      string
	Service   types.Service
	Signature *types.Signature
}

// Resolve splits an operation name on its last dot and finds the method.
func (s *Actions) Resolve(operation string) (*Operation, error) {
	idx := strings.LastIndex(operation, ".")
	if idx <= 0 || idx == len(operation)-1 {
		return nil, types.NewValidationError("operation %q must have the form service.method", operation)
	}
	serviceName, methodName := operation[:idx], operation[idx+1:]
	service := s.Lookup(serviceName)
	if service == nil {
		return nil, types.NewNotFoundError("service %v for operation %v", serviceName, operation)
	}
	signature := service.Methods().Lookup(methodName)
	if signature == nil {
		return nil, types.NewMethodNotFoundError(operation)
	}
	return &Operation{Name: serviceName + "." + signature.Name, Service: service, Signature: signature}, nil
}

// Operations returns every public operation, sorted; deterministicOnly keeps
// methods eligible for pipelines.
func (s *Actions) Operations(deterministicOnly bool) []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var ret []string
	for name, service := range s.services {
		for _, signature := range service.Methods() {
			if signature.Internal || (deterministicOnly && !signature.Deterministic) {
				continue
			}
			ret = append(ret, name+"."+signature.Name)
		}
	}
	sort.Strings(ret)
	return ret
}

// NewActions creates a registry holding services.
func NewActions(services ...types.Service) *Actions {
	ret := &Actions{
		services: make(map[string]types.Service),
	}
	for _, service := range services {
		ret.Register(service)
	}
	return ret
}
