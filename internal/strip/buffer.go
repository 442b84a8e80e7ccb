package strip

// Buffer holds one Pixel per strip position. Its length is fixed for the
// lifetime of a renderer.
type Buffer []Pixel

func NewBuffer(n int) Buffer {
	if n < 0 {
		n = 0
	}
	return make(Buffer, n)
}

// Clear sets every position to Black.
func (b Buffer) Clear() { b.Fill(Black) }

func (b Buffer) Fill(p Pixel) {
	for i := range b {
		b[i] = p
	}
}

// FillRange paints [from, to) with p. The range is clipped to the buffer.
func (b Buffer) FillRange(from, to int, p Pixel) {
	from, to = b.clip(from, to)
	for i := from; i < to; i++ {
		b[i] = p
	}
}

// Rainbow paints count positions starting at from with a hue gradient that
// begins at hue and advances step degrees per pixel.
func (b Buffer) Rainbow(from, count int, hue, step float64) {
	lo, hi := b.clip(from, from+count)
	for i := lo; i < hi; i++ {
		b[i] = Hue(hue + float64(i-from)*step).Pixel()
	}
}

func (b Buffer) Clone() Buffer {
	out := make(Buffer, len(b))
	copy(out, b)
	return out
}

// Bytes serializes the buffer as packed R,G,B triples.
func (b Buffer) Bytes() []byte {
	out := make([]byte, 0, len(b)*3)
	for _, p := range b {
		out = append(out, p.R, p.G, p.B)
	}
	return out
}

// Lit counts positions that are not Black.
func (b Buffer) Lit() int {
	n := 0
	for _, p := range b {
		if p != Black {
			n++
		}
	}
	return n
}

func (b Buffer) clip(from, to int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to > len(b) {
		to = len(b)
	}
	if to < from {
		to = from
	}
	return from, to
}
