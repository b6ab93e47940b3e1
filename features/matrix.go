package features

import (
	"fmt"
)

// Matrix is a row-major (Bands x Frames) feature matrix. Rows are frequency
// bands, columns are time frames.
type Matrix struct {
	Bands  int       `json:"bands"`
	Frames int       `json:"frames"`
	Data   []float32 `json:"-"`
}

// NewMatrix allocates a zeroed matrix
func NewMatrix(bands, frames int) *Matrix {
	return &Matrix{
		Bands:  bands,
		Frames: frames,
		Data:   make([]float32, bands*frames),
	}
}

// At returns the value for band b at frame t
func (m *Matrix) At(b, t int) float32 {
	return m.Data[b*m.Frames+t]
}

// Set stores v for band b at frame t
func (m *Matrix) Set(b, t int, v float32) {
	m.Data[b*m.Frames+t] = v
}

// Row returns band b across all frames. The slice aliases Data.
func (m *Matrix) Row(b int) []float32 {
	return m.Data[b*m.Frames : (b+1)*m.Frames]
}

func (m *Matrix) String() string {
	return fmt.Sprintf("Matrix{%d bands x %d frames}", m.Bands, m.Frames)
}

// ModelInput is a Matrix presented with leading batch and channel axes,
// shape (1, 1, Bands, Frames).
type ModelInput struct {
	matrix *Matrix
}

// NewModelInput wraps m without copying
func NewModelInput(m *Matrix) *ModelInput {
	return &ModelInput{matrix: m}
}

// Shape returns the four input dimensions
func (in *ModelInput) Shape() [4]int {
	if in == nil || in.matrix == nil {
		return [4]int{1, 1, 0, 0}
	}
	return [4]int{1, 1, in.matrix.Bands, in.matrix.Frames}
}

// Flatten returns a row-major copy of every element
func (in *ModelInput) Flatten() []float32 {
	if in == nil || in.matrix == nil {
		return nil
	}
	out := make([]float32, len(in.matrix.Data))
	copy(out, in.matrix.Data)
	return out
}

// Matrix returns the wrapped matrix
func (in *ModelInput) Matrix() *Matrix {
	if in == nil {
		return nil
	}
	return in.matrix
}
