package gekko

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

type ValueKind int

const (
	ValueNumber ValueKind = iota
	ValueVec2
	ValueVec3
	ValueString
	ValueBool
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumber:
		return "number"
	case ValueVec2:
		return "vec2"
	case ValueVec3:
		return "vec3"
	case ValueString:
		return "string"
	case ValueBool:
		return "bool"
	}
	return "unknown"
}

// SystemValue is a closed union of the value types scripts and save states
// exchange with the scene graph.
type SystemValue struct {
	kind ValueKind
	num  float64
	vec  mgl32.Vec3
	str  string
	b    bool
}

func NumberValue(v float64) SystemValue { return SystemValue{kind: ValueNumber, num: v} }
func Vec2Value(v mgl32.Vec2) SystemValue {
	return SystemValue{kind: ValueVec2, vec: mgl32.Vec3{v.X(), v.Y(), 0}}
}
func Vec3Value(v mgl32.Vec3) SystemValue { return SystemValue{kind: ValueVec3, vec: v} }
func StringValue(v string) SystemValue   { return SystemValue{kind: ValueString, str: v} }
func BoolValue(v bool) SystemValue       { return SystemValue{kind: ValueBool, b: v} }

func (v SystemValue) Kind() ValueKind { return v.kind }

func (v SystemValue) AsNumber() (float64, bool) { return v.num, v.kind == ValueNumber }
func (v SystemValue) AsVec2() (mgl32.Vec2, bool) {
	return mgl32.Vec2{v.vec.X(), v.vec.Y()}, v.kind == ValueVec2
}
func (v SystemValue) AsVec3() (mgl32.Vec3, bool) { return v.vec, v.kind == ValueVec3 }
func (v SystemValue) AsString() (string, bool)   { return v.str, v.kind == ValueString }
func (v SystemValue) AsBool() (bool, bool)       { return v.b, v.kind == ValueBool }

func (v SystemValue) String() string {
	switch v.kind {
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case ValueVec2:
		return fmt.Sprintf("(%g, %g)", v.vec.X(), v.vec.Y())
	case ValueVec3:
		return fmt.Sprintf("(%g, %g, %g)", v.vec.X(), v.vec.Y(), v.vec.Z())
	case ValueString:
		return v.str
	case ValueBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

type yamlValue struct {
	Number *float64  `yaml:"number,omitempty"`
	Vec2   []float32 `yaml:"vec2,omitempty,flow"`
	Vec3   []float32 `yaml:"vec3,omitempty,flow"`
	String *string   `yaml:"string,omitempty"`
	Bool   *bool     `yaml:"bool,omitempty"`
}

func (v SystemValue) MarshalYAML() (any, error) {
	var out yamlValue
	switch v.kind {
	case ValueNumber:
		out.Number = &v.num
	case ValueVec2:
		out.Vec2 = []float32{v.vec.X(), v.vec.Y()}
	case ValueVec3:
		out.Vec3 = []float32{v.vec.X(), v.vec.Y(), v.vec.Z()}
	case ValueString:
		out.String = &v.str
	case ValueBool:
		out.Bool = &v.b
	}
	return out, nil
}

func (v *SystemValue) UnmarshalYAML(node *yaml.Node) error {
	var in yamlValue
	if err := node.Decode(&in); err != nil {
		return err
	}
	switch {
	case in.Number != nil:
		*v = NumberValue(*in.Number)
	case len(in.Vec2) == 2:
		*v = Vec2Value(mgl32.Vec2{in.Vec2[0], in.Vec2[1]})
	case len(in.Vec3) == 3:
		*v = Vec3Value(mgl32.Vec3{in.Vec3[0], in.Vec3[1], in.Vec3[2]})
	case in.String != nil:
		*v = StringValue(*in.String)
	case in.Bool != nil:
		*v = BoolValue(*in.Bool)
	default:
		return fmt.Errorf("line %d: system value has no recognised variant", node.Line)
	}
	return nil
}

// SaveState is the flat persisted key/value store. It lives beside the
// object tree; objects copy chosen properties in and out of it.
type SaveState struct {
	mu     sync.RWMutex
	values map[string]SystemValue
}

func NewSaveState() *SaveState {
	return &SaveState{values: make(map[string]SystemValue)}
}

func (s *SaveState) Set(key string, v SystemValue) {
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
}

func (s *SaveState) Get(key string) (SystemValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *SaveState) Delete(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Keys returns the stored keys in sorted order.
func (s *SaveState) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *SaveState) Save(path string) error {
	s.mu.RLock()
	data, err := yaml.Marshal(s.values)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding save state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing save state %s: %w", path, err)
	}
	return nil
}

// LoadSaveState reads a save file. A missing file yields an empty state.
func LoadSaveState(path string) (*SaveState, error) {
	s := NewSaveState()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading save state %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return s, fmt.Errorf("parsing save state %s: %w", path, err)
	}
	if s.values == nil {
		s.values = make(map[string]SystemValue)
	}
	return s, nil
}
