package obsws

import "fmt"

// SceneRangeError is returned for a scene position outside the scene list.
type SceneRangeError struct {
	Position int
	Count    int
}

// Error implements error.
func (e *SceneRangeError) Error() string {
	return fmt.Sprintf("scene %d out of range, compositor has %d scenes", e.Position, e.Count)
}
