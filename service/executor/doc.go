// Package executor bridges named operations with the services that implement
// them. It resolves a "service.method" name through the action registry,
// converts generic arguments into the method's typed input, invokes it and
// hands the typed output back to the caller.
package executor
