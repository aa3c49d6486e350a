package executor

import "errors"

var ErrOperationNotPermitted = errors.New("operation not permitted")
