package gekko

// EmptyObject is a grouping node with no behavior of its own.
type EmptyObject struct {
	*ObjectBase
}

func NewEmptyObject(name string) *EmptyObject {
	return &EmptyObject{ObjectBase: NewObjectBase(name)}
}
