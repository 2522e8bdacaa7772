package metadata

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/spaghettifunk/grindsim/engine/math"
)

type std140Writer struct {
	buf []byte
}

func newStd140Writer(capacity int) *std140Writer {
	return &std140Writer{buf: make([]byte, 0, capacity)}
}

func (w *std140Writer) f32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, gomath.Float32bits(v))
}

func (w *std140Writer) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *std140Writer) i32(v int32) {
	w.u32(uint32(v))
}

func (w *std140Writer) vec2(v math.Vec2) {
	w.f32(v[0])
	w.f32(v[1])
}

func (w *std140Writer) vec3(v math.Vec3) {
	for _, c := range v {
		w.f32(c)
	}
}

func (w *std140Writer) vec4(v math.Vec4) {
	for _, c := range v {
		w.f32(c)
	}
}

func (w *std140Writer) uvec4(v [4]uint32) {
	for _, c := range v {
		w.u32(c)
	}
}

// mat4 writes the matrix column by column, which is mgl32's storage order.
func (w *std140Writer) mat4(m math.Mat4) {
	for _, c := range m {
		w.f32(c)
	}
}

// pad grows the buffer with zeros up to a multiple of align.
func (w *std140Writer) pad(align int) {
	for len(w.buf)%align != 0 {
		w.buf = append(w.buf, 0)
	}
}

func (w *std140Writer) bytes() []byte {
	return w.buf
}

type std140Reader struct {
	buf []byte
	off int
}

func (r *std140Reader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *std140Reader) f32() float32 {
	return gomath.Float32frombits(r.u32())
}

func (r *std140Reader) vec4() math.Vec4 {
	return math.Vec4{r.f32(), r.f32(), r.f32(), r.f32()}
}

func (r *std140Reader) uvec4() [4]uint32 {
	return [4]uint32{r.u32(), r.u32(), r.u32(), r.u32()}
}

func (r *std140Reader) mat4() math.Mat4 {
	var m math.Mat4
	for i := range m {
		m[i] = r.f32()
	}
	return m
}

func checkSize(kind string, b []byte, want int) error {
	if len(b) < want {
		return fmt.Errorf("%s: need %d bytes, got %d", kind, want, len(b))
	}
	return nil
}
