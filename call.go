package gekko

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// CallObject finds an object by name across all systems and invokes a Call
// on it.
func (fw *Framework) CallObject(object, name string, args ...string) (string, error) {
	obj, ok := fw.FindObject(object)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrObjectNotFound, object)
	}
	out, ok := obj.Call(fw, name, args)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrNotImplemented, object, name)
	}
	return out, nil
}

// parseFloats reads exactly n float arguments of a Call.
func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d arguments, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func formatVec3(v mgl32.Vec3) string {
	return fmt.Sprintf("%g,%g,%g", v.X(), v.Y(), v.Z())
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}
