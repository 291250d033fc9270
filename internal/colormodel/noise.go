package colormodel

import "math"

// Noise generators. Every exported function takes three float
// coordinates and returns a value in [-1,1]; the compositor never
// interprets these, they are pure pipes exposed to scripts.
//
// The permutation table is the fixed 256-value base used by classic
// gradient-noise implementations (the same one the simplex-noise
// reference paper ships and that this pack's 3D engine reorders at
// runtime); we keep it unshuffled so every noise function here is a
// pure, seedless function of its input coordinates.
var basePermutation = [256]byte{
	151, 160, 137, 91, 90, 15,
	131, 13, 201, 95, 96, 53, 194, 233, 7, 225, 140, 36, 103, 30, 69, 142, 8, 99, 37, 240, 21, 10, 23,
	190, 6, 148, 247, 120, 234, 75, 0, 26, 197, 62, 94, 252, 219, 203, 117, 35, 11, 32, 57, 177, 33,
	88, 237, 149, 56, 87, 174, 20, 125, 136, 171, 168, 68, 175, 74, 165, 71, 134, 139, 48, 27, 166,
	77, 146, 158, 231, 83, 111, 229, 122, 60, 211, 133, 230, 220, 105, 92, 41, 55, 46, 245, 40, 244,
	102, 143, 54, 65, 25, 63, 161, 1, 216, 80, 73, 209, 76, 132, 187, 208, 89, 18, 169, 200, 196,
	135, 130, 116, 188, 159, 86, 164, 100, 109, 198, 173, 186, 3, 64, 52, 217, 226, 250, 124, 123,
	5, 202, 38, 147, 118, 126, 255, 82, 85, 212, 207, 206, 59, 227, 47, 16, 58, 17, 182, 189, 28, 42,
	223, 183, 170, 213, 119, 248, 152, 2, 44, 154, 163, 70, 221, 153, 101, 155, 167, 43, 172, 9,
	129, 22, 39, 253, 19, 98, 108, 110, 79, 113, 224, 232, 178, 185, 112, 104, 218, 246, 97, 228,
	251, 34, 242, 193, 238, 210, 144, 12, 191, 179, 162, 241, 81, 51, 145, 235, 249, 14, 239, 107,
	49, 192, 214, 31, 181, 199, 106, 157, 184, 84, 204, 176, 115, 121, 50, 45, 127, 4, 150, 254,
	138, 236, 205, 93, 222, 114, 67, 29, 24, 72, 243, 141, 128, 195, 78, 66, 215, 61, 156, 180,
}

var perm [512]int
var permMod12 [512]int

func init() {
	for i := 0; i < 512; i++ {
		perm[i] = int(basePermutation[i&255])
		permMod12[i] = perm[i] % 12
	}
}

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func grad3(hash int, x, y, z float64) float64 {
	switch hash & 15 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x + z
	case 5:
		return -x + z
	case 6:
		return x - z
	case 7:
		return -x - z
	case 8:
		return y + z
	case 9:
		return -y + z
	case 10:
		return y - z
	case 11:
		return -y - z
	case 12:
		return x + y
	case 13:
		return -y + z
	case 14:
		return -x + y
	default:
		return -y - z
	}
}

// Perlin is classic (Ken Perlin, improved 2002) 3D gradient noise.
func Perlin(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	xi, yi, zi := int(fx)&255, int(fy)&255, int(fz)&255
	xf, yf, zf := x-fx, y-fy, z-fz
	u, v, w := fade(xf), fade(yf), fade(zf)

	a := perm[xi] + yi
	aa := perm[a] + zi
	ab := perm[a+1] + zi
	b := perm[xi+1] + yi
	ba := perm[b] + zi
	bb := perm[b+1] + zi

	x1 := lerp1(grad3(perm[aa], xf, yf, zf), grad3(perm[ba], xf-1, yf, zf), u)
	x2 := lerp1(grad3(perm[ab], xf, yf-1, zf), grad3(perm[bb], xf-1, yf-1, zf), u)
	y1 := lerp1(x1, x2, v)

	x3 := lerp1(grad3(perm[aa+1], xf, yf, zf-1), grad3(perm[ba+1], xf-1, yf, zf-1), u)
	x4 := lerp1(grad3(perm[ab+1], xf, yf-1, zf-1), grad3(perm[bb+1], xf-1, yf-1, zf-1), u)
	y2 := lerp1(x3, x4, v)

	return clampUnit(lerp1(y1, y2, w))
}

func lerp1(a, b, t float64) float64 { return a + t*(b-a) }

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Billow is Perlin noise folded around zero (abs), rescaled back to
// [-1,1], producing rounded, cloud-like features instead of ridges.
func Billow(x, y, z float64) float64 {
	return clampUnit(2*math.Abs(Perlin(x, y, z)) - 1)
}

// RidgedMultifractal inverts and squares the absolute value of Perlin
// noise, producing sharp ridges along the zero-crossings of the
// underlying gradient field.
func RidgedMultifractal(x, y, z float64) float64 {
	n := 1 - math.Abs(Perlin(x, y, z))
	return clampUnit(2*n*n - 1)
}

// FBM sums several octaves of Perlin noise at increasing frequency and
// decreasing amplitude (fractal Brownian motion), following the same
// octave-accumulation shape used elsewhere in this pack for layered
// noise generators.
func FBM(x, y, z float64) float64 {
	const (
		octaves   = 6
		lacunarity = 2.0
		gain       = 0.55
	)
	var total, amp, freq, norm float64
	amp, freq = 1, 1
	for o := 0; o < octaves; o++ {
		total += Perlin(x*freq, y*freq, z*freq) * amp
		norm += amp
		freq *= lacunarity
		amp *= gain
	}
	if norm == 0 {
		return 0
	}
	return clampUnit(total / norm)
}

// Worley (cellular/Voronoi) noise returns the distance from (x,y,z) to
// the nearest pseudo-randomly jittered feature point (one per unit grid
// cell, searched over the 27 surrounding cells), mapped into [-1,1].
func Worley(x, y, z float64) float64 {
	ix, iy, iz := math.Floor(x), math.Floor(y), math.Floor(z)
	best := math.MaxFloat64
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				cx, cy, cz := ix+float64(dx), iy+float64(dy), iz+float64(dz)
				fx, fy, fz := cellFeaturePoint(int(cx), int(cy), int(cz))
				px, py, pz := cx+fx, cy+fy, cz+fz
				d := dist3(x-px, y-py, z-pz)
				if d < best {
					best = d
				}
			}
		}
	}
	// typical nearest-neighbor distance for jittered unit cells is
	// roughly in [0, 1.5]; rescale into [-1,1].
	return clampUnit(best/0.75 - 1)
}

func dist3(x, y, z float64) float64 { return math.Sqrt(x*x + y*y + z*z) }

func cellFeaturePoint(x, y, z int) (fx, fy, fz float64) {
	h := hash3(x, y, z)
	fx = float64((h>>0)&0xff) / 255.0
	fy = float64((h>>8)&0xff) / 255.0
	fz = float64((h>>16)&0xff) / 255.0
	return
}

func hash3(x, y, z int) uint32 {
	i := perm[(x&255+perm[(y&255+perm[z&255])&511])&511]
	j := perm[(y&255+perm[(z&255+perm[x&255])&511])&511]
	k := perm[(z&255+perm[(x&255+perm[y&255])&511])&511]
	return uint32(i) | uint32(j)<<8 | uint32(k)<<16
}

// simplex gradients for 3D open simplex noise, reused from the
// 12-edge-midpoint gradient set classic simplex implementations use.
var simplexGrad3 = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

const (
	simplexF3 = 1.0 / 3.0
	simplexG3 = 1.0 / 6.0
)

func dot3(g [3]float64, x, y, z float64) float64 { return g[0]*x + g[1]*y + g[2]*z }

// OpenSimplex is 3D simplex noise, adapted from the permutation-table
// gradient-noise family used throughout this pack, generalized to take
// an explicit z coordinate instead of the 2D-only form used elsewhere.
func OpenSimplex(x, y, z float64) float64 {
	s := (x + y + z) * simplexF3
	i := math.Floor(x + s)
	j := math.Floor(y + s)
	k := math.Floor(z + s)
	t := (i + j + k) * simplexG3
	x0 := x - (i - t)
	y0 := y - (j - t)
	z0 := z - (k - t)

	var i1, j1, k1, i2, j2, k2 int
	switch {
	case x0 >= y0 && y0 >= z0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 1, 0
	case x0 >= z0 && z0 >= y0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 0, 1
	case z0 >= x0 && x0 >= y0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 1, 0, 1
	case z0 >= y0 && y0 >= x0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 0, 1, 1
	case y0 >= z0 && z0 >= x0:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 0, 1, 1
	default:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 1, 1, 0
	}

	x1 := x0 - float64(i1) + simplexG3
	y1 := y0 - float64(j1) + simplexG3
	z1 := z0 - float64(k1) + simplexG3
	x2 := x0 - float64(i2) + 2*simplexG3
	y2 := y0 - float64(j2) + 2*simplexG3
	z2 := z0 - float64(k2) + 2*simplexG3
	x3 := x0 - 1 + 3*simplexG3
	y3 := y0 - 1 + 3*simplexG3
	z3 := z0 - 1 + 3*simplexG3

	ii, jj, kk := int(i)&255, int(j)&255, int(k)&255
	gi0 := permMod12[ii+perm[jj+perm[kk]]]
	gi1 := permMod12[ii+i1+perm[jj+j1+perm[kk+k1]]]
	gi2 := permMod12[ii+i2+perm[jj+j2+perm[kk+k2]]]
	gi3 := permMod12[ii+1+perm[jj+1+perm[kk+1]]]

	n0 := simplexCorner(x0, y0, z0, gi0)
	n1 := simplexCorner(x1, y1, z1, gi1)
	n2 := simplexCorner(x2, y2, z2, gi2)
	n3 := simplexCorner(x3, y3, z3, gi3)

	return clampUnit(32 * (n0 + n1 + n2 + n3))
}

func simplexCorner(x, y, z float64, gi int) float64 {
	t := 0.6 - x*x - y*y - z*z
	if t < 0 {
		return 0
	}
	t *= t
	return t * t * dot3(simplexGrad3[gi], x, y, z)
}
