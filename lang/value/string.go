package value

// String is an immutable, interned byte sequence. Two String objects
// with equal bytes are always the same object (see lang/engine's intern
// table), so Go pointer equality is string value equality.
type String struct {
	Chars string
	Hash  uint32
}

func (s *String) Type() string     { return "string" }
func (s *String) String() string   { return s.Chars }
func (s *String) ObjType() ObjType { return ObjString }

var _ Object = (*String)(nil)
