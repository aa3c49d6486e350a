package types

// Service is a named operation service; pipelines address its methods as
// "service.method".
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
