// Package extension provides the run-time registry of named operation
// services. Pipelines address registered methods as "service.method".
package extension
