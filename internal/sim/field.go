package sim

// Field is a single-channel float32 grid at surface resolution. Row 0 is
// the bottom of the surface, matching the normalized y-up coordinate space.
type Field struct {
	W, H int
	Data []float32
}

// NewField allocates a zeroed field.
func NewField(w, h int) *Field {
	return &Field{W: w, H: h, Data: make([]float32, w*h)}
}

// At returns the value at (x, y) with mirrored edges: an out-of-range
// neighbor reflects back inside the grid. This gives the Neumann-like
// boundary the wave integrator needs to avoid energy loss at edges.
func (f *Field) At(x, y int) float32 {
	if x < 0 {
		x = -x
	} else if x >= f.W {
		x = 2*f.W - 2 - x
	}
	if y < 0 {
		y = -y
	} else if y >= f.H {
		y = 2*f.H - 2 - y
	}
	return f.Data[y*f.W+x]
}

// Get returns the value at (x, y) without bounds handling.
func (f *Field) Get(x, y int) float32 {
	return f.Data[y*f.W+x]
}

// Set stores v at (x, y).
func (f *Field) Set(x, y int, v float32) {
	f.Data[y*f.W+x] = v
}

// Sample returns the bilinearly interpolated value at normalized (u, v).
func (f *Field) Sample(u, v float64) float64 {
	if f.W == 0 || f.H == 0 {
		return 0
	}
	x := Clamp(u, 0, 1) * float64(f.W-1)
	y := Clamp(v, 0, 1) * float64(f.H-1)
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= f.W {
		x1 = f.W - 1
	}
	if y1 >= f.H {
		y1 = f.H - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)
	top := Mix(float64(f.Get(x0, y1)), float64(f.Get(x1, y1)), fx)
	bot := Mix(float64(f.Get(x0, y0)), float64(f.Get(x1, y0)), fx)
	return Mix(bot, top, fy)
}

// Clear zeroes the field in place.
func (f *Field) Clear() {
	for i := range f.Data {
		f.Data[i] = 0
	}
}

// Resize reallocates the field zeroed at the new resolution. Accumulated
// state is intentionally discarded; a resize clears simulation history.
func (f *Field) Resize(w, h int) {
	f.W, f.H = w, h
	f.Data = make([]float32, w*h)
}

// FieldPair is a ping-pong pair of equally sized fields. The engine reads
// Front as the previous state and writes Back as the next state, then calls
// Swap. Never read and write the same field within one step.
type FieldPair struct {
	Front, Back *Field
}

// NewFieldPair allocates a zeroed pair.
func NewFieldPair(w, h int) *FieldPair {
	return &FieldPair{Front: NewField(w, h), Back: NewField(w, h)}
}

// Swap exchanges front and back after a simulation write.
func (p *FieldPair) Swap() {
	p.Front, p.Back = p.Back, p.Front
}

// Resize reallocates both fields zeroed at the new resolution.
func (p *FieldPair) Resize(w, h int) {
	p.Front.Resize(w, h)
	p.Back.Resize(w, h)
}
