package script

import (
	"math"
	"math/rand"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/cpw/eruption-roccat-vulcan/internal/colormodel"
)

// installHostFuncs installs the full host-function surface (spec.md
// §4.4) into h.L. Plugins install their own on top via plugins.InstallHostFuncs.
func (h *Host) installHostFuncs() {
	L := h.L

	reg := func(name string, fn lua.LGFunction) { L.SetGlobal(name, L.NewFunction(fn)) }

	reg("trace", h.logFn(func(a ...any) { h.log.Debug("trace", "msg", a) }))
	reg("debug", h.logFn(func(a ...any) { h.log.Debug("debug", "msg", a) }))
	reg("info", h.logFn(func(a ...any) { h.log.Info("info", "msg", a) }))
	reg("warn", h.logFn(func(a ...any) { h.log.Warn("warn", "msg", a) }))
	reg("error", h.logFn(func(a ...any) { h.log.Error("error", "msg", a) }))

	reg("delay", func(L *lua.LState) int {
		ms := L.CheckInt(1)
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return 0
	})

	reg("max", num2(math.Max))
	reg("min", num2(math.Min))
	reg("clamp", func(L *lua.LState) int {
		v, lo, hi := L.CheckNumber(1), L.CheckNumber(2), L.CheckNumber(3)
		out := math.Max(float64(lo), math.Min(float64(hi), float64(v)))
		L.Push(lua.LNumber(out))
		return 1
	})
	reg("abs", num1(math.Abs))
	reg("sin", num1(math.Sin))
	reg("pow", num2(math.Pow))
	reg("sqrt", num1(math.Sqrt))
	reg("trunc", num1(math.Trunc))
	reg("lerp", func(L *lua.LState) int {
		a, b, p := L.CheckNumber(1), L.CheckNumber(2), L.CheckNumber(3)
		L.Push(lua.LNumber(colormodel.Lerp(float64(a), float64(b), float64(p))))
		return 1
	})
	reg("rand", func(L *lua.LState) int {
		lo, hi := L.CheckInt64(1), L.CheckInt64(2)
		L.Push(lua.LNumber(lo + rand.Int63n(hi-lo)))
		return 1
	})

	// get_param reads this script's own manifest-declared configuration
	// out of the active profile, falling back to the value the script
	// passes in when the profile has no override.
	reg("get_param_int", func(L *lua.LState) int {
		name := L.CheckString(1)
		fallback := int64(L.CheckInt(2))
		if h.profile == nil {
			L.Push(lua.LNumber(fallback))
			return 1
		}
		L.Push(lua.LNumber(h.profile.Int(h.Name, name, fallback)))
		return 1
	})
	reg("get_param_float", func(L *lua.LState) int {
		name := L.CheckString(1)
		fallback := float64(L.CheckNumber(2))
		if h.profile == nil {
			L.Push(lua.LNumber(fallback))
			return 1
		}
		L.Push(lua.LNumber(h.profile.Float(h.Name, name, fallback)))
		return 1
	})
	reg("get_param_color", func(L *lua.LState) int {
		name := L.CheckString(1)
		fallback := uint32(L.CheckNumber(2))
		if h.profile == nil {
			L.Push(lua.LNumber(fallback))
			return 1
		}
		L.Push(lua.LNumber(h.profile.Color(h.Name, name, fallback)))
		return 1
	})

	reg("color_to_rgb", func(L *lua.LState) int {
		p := colormodel.UnpackRGB(uint32(L.CheckNumber(1)))
		L.Push(lua.LNumber(p.R))
		L.Push(lua.LNumber(p.G))
		L.Push(lua.LNumber(p.B))
		return 3
	})
	reg("color_to_rgba", func(L *lua.LState) int {
		p := colormodel.UnpackRGBA(uint32(L.CheckNumber(1)))
		L.Push(lua.LNumber(p.R))
		L.Push(lua.LNumber(p.G))
		L.Push(lua.LNumber(p.B))
		L.Push(lua.LNumber(p.A))
		return 4
	})
	reg("color_to_hsl", func(L *lua.LState) int {
		hue, sat, lum := colormodel.ColorToHSL(uint32(L.CheckNumber(1)))
		L.Push(lua.LNumber(hue))
		L.Push(lua.LNumber(sat))
		L.Push(lua.LNumber(lum))
		return 3
	})
	reg("rgb_to_color", func(L *lua.LState) int {
		p := colormodel.Pixel{R: byteArg(L, 1), G: byteArg(L, 2), B: byteArg(L, 3), A: 0xff}
		L.Push(lua.LNumber(colormodel.PackRGB(p)))
		return 1
	})
	reg("rgba_to_color", func(L *lua.LState) int {
		p := colormodel.Pixel{R: byteArg(L, 1), G: byteArg(L, 2), B: byteArg(L, 3), A: byteArg(L, 4)}
		L.Push(lua.LNumber(colormodel.PackRGBA(p)))
		return 1
	})
	reg("hsl_to_color", func(L *lua.LState) int {
		v := colormodel.HSLToColor(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
		L.Push(lua.LNumber(v))
		return 1
	})
	reg("hsla_to_color", func(L *lua.LState) int {
		v := colormodel.HSLAToColor(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)), float64(L.CheckNumber(3)), byteArg(L, 4))
		L.Push(lua.LNumber(v))
		return 1
	})

	reg("linear_gradient", func(L *lua.LState) int {
		start := colormodel.UnpackRGBA(uint32(L.CheckNumber(1)))
		dest := colormodel.UnpackRGBA(uint32(L.CheckNumber(2)))
		p := float64(L.CheckNumber(3))
		out := colormodel.LinearGradient(start, dest, p)
		L.Push(lua.LNumber(colormodel.PackRGBA(out)))
		return 1
	})

	reg("perlin_noise", noise3(colormodel.Perlin))
	reg("billow_noise", noise3(colormodel.Billow))
	reg("voronoi_noise", noise3(colormodel.Worley))
	reg("fractal_brownian_noise", noise3(colormodel.FBM))
	reg("ridged_multifractal_noise", noise3(colormodel.RidgedMultifractal))
	reg("open_simplex_noise", noise3(colormodel.OpenSimplex))

	reg("rotate", func(L *lua.LState) int {
		in := frameArg(L, 1, h.numKeys)
		theta := float64(L.CheckNumber(2))
		var cols, rows int
		if h.ctx != nil {
			cols, rows = h.ctx.GridCols, h.ctx.GridRows
		}
		cols = L.OptInt(3, cols)
		rows = L.OptInt(4, rows)
		out := colormodel.Rotate(in, theta, cols, rows)
		L.Push(packFrame(L, out))
		return 1
	})

	reg("get_num_keys", func(L *lua.LState) int {
		L.Push(lua.LNumber(h.numKeys))
		return 1
	})

	// get_key_color reads the shared GLOBAL frame, not the script's own
	// local frame — the decided reading of the spec's open question on
	// what a script observes when it queries "the current" key color.
	reg("get_key_color", func(L *lua.LState) int {
		i := L.CheckInt(1)
		if i < 0 || i >= h.numKeys || h.ctx == nil || h.ctx.Global == nil {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(colormodel.PackRGBA(h.ctx.Global.Get(i))))
		return 1
	})

	reg("set_key_color", func(L *lua.LState) int {
		i := L.CheckInt(1)
		color := uint32(L.CheckNumber(2))
		if h.presenter != nil {
			if err := h.presenter.PresentPixel(i, color); err != nil {
				h.log.Warn("set_key_color failed", "error", err)
			}
		}
		return 0
	})

	reg("get_color_map", func(L *lua.LState) int {
		L.Push(packFrame(L, h.local))
		return 1
	})

	reg("set_color_map", func(L *lua.LState) int {
		frame := frameArg(L, 1, h.numKeys)
		packed := make([]uint32, len(frame))
		for i, p := range frame {
			packed[i] = colormodel.PackRGB(p)
		}
		if h.presenter != nil {
			if err := h.presenter.PresentFrame(packed); err != nil {
				h.log.Warn("set_color_map failed", "error", err)
			}
		}
		return 0
	})

	// submit_color_map writes the script's local frame, which is
	// blended over the global frame at the next RealizeColorMap
	// barrier. It is not cleared afterward: the decided reading of the
	// spec's open question is that a script's contribution persists
	// until it next calls submit_color_map.
	reg("submit_color_map", func(L *lua.LState) int {
		h.local = frameArg(L, 1, h.numKeys)
		return 0
	})
}

func (h *Host) logFn(sink func(...any)) lua.LGFunction {
	return func(L *lua.LState) int {
		n := L.GetTop()
		args := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			args = append(args, L.ToStringMeta(L.Get(i)).String())
		}
		sink(args...)
		return 0
	}
}

func num1(f func(float64) float64) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LNumber(f(float64(L.CheckNumber(1)))))
		return 1
	}
}

func num2(f func(float64, float64) float64) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LNumber(f(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))))
		return 1
	}
}

func noise3(f func(x, y, z float64) float64) lua.LGFunction {
	return func(L *lua.LState) int {
		v := f(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
		L.Push(lua.LNumber(v))
		return 1
	}
}

func byteArg(L *lua.LState, n int) uint8 {
	return uint8(L.CheckInt(n))
}

// frameArg decodes a Lua table of k packed RGBA integers into a Frame.
func frameArg(L *lua.LState, n, k int) colormodel.Frame {
	tbl := L.CheckTable(n)
	out := colormodel.NewFrame(k)
	for i := 0; i < k; i++ {
		v := tbl.RawGetInt(i + 1)
		if num, ok := v.(lua.LNumber); ok {
			out[i] = colormodel.UnpackRGBA(uint32(num))
		}
	}
	return out
}

// packFrame encodes a Frame as a 1-indexed Lua table of packed RGBA
// integers.
func packFrame(L *lua.LState, f colormodel.Frame) *lua.LTable {
	tbl := L.CreateTable(len(f), 0)
	for i, p := range f {
		tbl.RawSetInt(i+1, lua.LNumber(colormodel.PackRGBA(p)))
	}
	return tbl
}
