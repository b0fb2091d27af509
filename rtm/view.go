package rtm

import "fmt"

// View is a kind-tagged window over one field of native storage. Scalars
// are views of length one. Indexing outside [0, Len()) panics.
type View[K comparable] struct {
	kind K
	data []float64
}

func NewView[K comparable](kind K, data []float64) View[K] {
	return View[K]{kind: kind, data: data}
}

func (v View[K]) Kind() K {
	return v.kind
}

func (v View[K]) Len() int {
	return len(v.data)
}

func (v View[K]) At(i int) float64 {
	return v.data[i]
}

func (v View[K]) Set(i int, x float64) {
	v.data[i] = x
}

// Values copies the current contents out of native storage.
func (v View[K]) Values() []float64 {
	out := make([]float64, len(v.data))
	copy(out, v.data)
	return out
}

// Load copies src into native storage. It panics if the lengths differ.
func (v View[K]) Load(src []float64) {
	if len(src) != len(v.data) {
		panic(fmt.Sprintf("rtm: view %v holds %d values, got %d", v.kind, len(v.data), len(src)))
	}
	copy(v.data, src)
}
