package prefabs

// VecSpec is a point or direction written as [x, y] or [x, y, z].
type VecSpec []float64

func (v VecSpec) XYZ() (x, y, z float64) {
	if len(v) > 0 {
		x = v[0]
	}
	if len(v) > 1 {
		y = v[1]
	}
	if len(v) > 2 {
		z = v[2]
	}
	return x, y, z
}
