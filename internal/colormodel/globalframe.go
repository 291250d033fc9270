package colormodel

import "sync"

// GlobalFrame is the single shared output frame the compositor
// presents from (spec.md §4.5). Script goroutines blend into it only
// during the RealizeColorMap barrier; reads (e.g.
// get_key_color) may happen at any time from any script goroutine, so
// access is guarded by a mutex rather than left to the barrier alone.
type GlobalFrame struct {
	mu    sync.Mutex
	frame Frame
}

// NewGlobalFrame creates a GlobalFrame of k pixels, initialized to
// fully transparent black.
func NewGlobalFrame(k int) *GlobalFrame {
	return &GlobalFrame{frame: NewFrame(k)}
}

// Snapshot returns a copy of the current frame, safe for the caller to
// read or mutate without affecting the GlobalFrame.
func (g *GlobalFrame) Snapshot() Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frame.Clone()
}

// Get returns the pixel at index i of the current frame.
func (g *GlobalFrame) Get(i int) Pixel {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frame[i]
}

// Set writes a single pixel directly, bypassing blending. Used by the
// immediate-present path (set_key_color, set_color_map) which is
// documented to write straight through rather than composite.
func (g *GlobalFrame) Set(i int, p Pixel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frame[i] = p
}

// Replace overwrites the whole frame directly, bypassing blending.
func (g *GlobalFrame) Replace(f Frame) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frame = f.Clone()
}

// BlendOverInto composites local over the current global frame at the
// given brightness and stores the result, in one locked step. This is
// the path RealizeColorMap uses for each script's contribution during
// the barrier.
func (g *GlobalFrame) BlendOverInto(local Frame, brightness int32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.frame {
		if i >= len(local) {
			break
		}
		BlendPixelInto(&g.frame[i], local[i], brightness)
	}
}
