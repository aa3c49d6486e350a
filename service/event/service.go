package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/docbridge/service/messaging"
	"github.com/viant/docbridge/service/messaging/memory"
)

// Service is a typed event bus: one queue and at most one listener per
// payload type.
type Service struct {
	typedPublishers   map[reflect.Type]any
	typedListener     map[reflect.Type]any
	closers           []func() error
	mux               *sync.RWMutex
	queueVendor       messaging.Vendor
	memNewQueueConfig func(name string) memory.Config
}

func New(queueVendor messaging.Vendor, opts ...Option) (*Service, error) {
	ret := &Service{
		queueVendor:     queueVendor,
		typedPublishers: make(map[reflect.Type]any),
		typedListener:   make(map[reflect.Type]any),
		mux:             &sync.RWMutex{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	switch queueVendor {
	case messaging.VendorMemory:
		if ret.memNewQueueConfig == nil {
			ret.memNewQueueConfig = func(string) memory.Config { return memory.DefaultConfig() }
		}
	default:
		return nil, fmt.Errorf("unsupported queue vendor: %s", queueVendor)
	}
	return ret, nil
}

func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	switch s.queueVendor {
	case messaging.VendorMemory:
		return memory.NewQueue[T](s.memNewQueueConfig(name)), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", s.queueVendor)
}

func keyOf[T any]() reflect.Type {
	var t T
	rType := reflect.TypeOf(t)
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf replaces the listener for T.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) error {
	key := keyOf[T]()
	s.mux.Lock()
	ret, ok := s.typedListener[key]
	delete(s.typedListener, key)
	s.mux.Unlock()
	if ok {
		ret.(*Listener[T]).Stop()
	}
	publisher, err := PublisherOf[T](s)
	if err != nil {
		return err
	}
	listener := NewListener[T](publisher, handler)
	s.mux.Lock()
	s.typedListener[key] = listener
	listener.Start()
	s.mux.Unlock()
	return nil
}

// RemoveListenerOf stops the listener for T, if any.
func RemoveListenerOf[T any](s *Service) {
	key := keyOf[T]()
	s.mux.Lock()
	ret, ok := s.typedListener[key]
	delete(s.typedListener, key)
	s.mux.Unlock()
	if ok {
		ret.(*Listener[T]).Stop()
	}
}

// PublisherOf returns a publisher for the provided type
func PublisherOf[T any](s *Service) (*Publisher[T], error) {
	key := keyOf[T]()
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok := s.typedPublishers[key]; ok {
		return ret.(*Publisher[T]), nil
	}
	queue, err := QueueOf[Event[T]](s, key.String())
	if err != nil {
		return nil, err
	}
	publisher := NewPublisher[T](queue)
	s.typedPublishers[key] = publisher
	s.closers = append(s.closers, publisher.Close)
	return publisher, nil
}

// Close closes every queue, which also ends running listeners.
func (s *Service) Close() error {
	s.mux.Lock()
	closers := s.closers
	s.closers = nil
	s.mux.Unlock()
	var err error
	for _, closer := range closers {
		if cErr := closer(); cErr != nil && err == nil {
			err = cErr
		}
	}
	return err
}
