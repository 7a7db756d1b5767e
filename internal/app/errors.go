package service

import "errors"

// ErrUnknownDriver is returned by Start for an unsupported store driver.
var ErrUnknownDriver = errors.New("unknown store driver")
