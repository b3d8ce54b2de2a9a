package gekko

import "errors"

var (
	ErrSystemNotFound  = errors.New("gekko: system not found")
	ErrObjectNotFound  = errors.New("gekko: object not found")
	ErrDuplicateSystem = errors.New("gekko: duplicate system id")
	ErrNotImplemented  = errors.New("gekko: call not implemented")
)
