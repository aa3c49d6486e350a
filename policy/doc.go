// Package policy restricts which operations a batch run may invoke. A policy
// travels in the context so engines stay unaware of how it was configured.
package policy
