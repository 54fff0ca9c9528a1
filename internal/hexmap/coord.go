package hexmap

import (
	"fmt"
	"math"
)

// ─── Hex Coordinates ────────────────────────────────────────────────────────
// Axial (q,r) coordinates with cube (x,y,z; x+y+z=0) used for distance,
// line and ring math.

type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

type Cube struct {
	X, Y, Z int
}

// Key returns the canonical string form used for map storage.
func (c Coord) Key() string {
	return fmt.Sprintf("%d,%d", c.Q, c.R)
}

// Cube converts axial to cube coordinates.
func (c Coord) Cube() Cube {
	x := c.Q
	z := c.R
	return Cube{X: x, Y: -x - z, Z: z}
}

// Axial converts cube coordinates back to axial.
func (c Cube) Axial() Coord {
	return Coord{Q: c.X, R: c.Z}
}

// Distance returns the hex distance between two coordinates:
// max(|dx|,|dy|,|dz|) in cube space.
func Distance(a, b Coord) int {
	ac := a.Cube()
	bc := b.Cube()
	return maxInt(absInt(ac.X-bc.X), maxInt(absInt(ac.Y-bc.Y), absInt(ac.Z-bc.Z)))
}

// ─── Facing & Neighbors ─────────────────────────────────────────────────────
// Facing 0-5: 0=N, 1=NE, 2=SE, 3=S, 4=SW, 5=NW (clockwise from top).

type Facing int

const (
	FacingN Facing = iota
	FacingNE
	FacingSE
	FacingS
	FacingSW
	FacingNW
	NumFacings = 6
)

// Cube direction vectors per facing.
// 0(N): (0,+1,-1), 1(NE): (+1,0,-1), 2(SE): (+1,-1,0)
// 3(S): (0,-1,+1), 4(SW): (-1,0,+1), 5(NW): (-1,+1,0)
var facingDirs = [NumFacings]Cube{
	{0, 1, -1}, {1, 0, -1}, {1, -1, 0},
	{0, -1, 1}, {-1, 0, 1}, {-1, 1, 0},
}

// Normalize wraps any int onto 0-5.
func (f Facing) Normalize() Facing {
	return Facing(((int(f) % NumFacings) + NumFacings) % NumFacings)
}

// Opposite returns the facing three hexsides away.
func (f Facing) Opposite() Facing {
	return (f + 3).Normalize()
}

// Neighbor returns the single adjacent coordinate in the given facing.
func Neighbor(c Coord, f Facing) Coord {
	d := facingDirs[f.Normalize()]
	cc := c.Cube()
	return Cube{X: cc.X + d.X, Y: cc.Y + d.Y, Z: cc.Z + d.Z}.Axial()
}

// Neighbors returns all 6 adjacent coordinates in facing order.
func Neighbors(c Coord) [NumFacings]Coord {
	var out [NumFacings]Coord
	for f := 0; f < NumFacings; f++ {
		out[f] = Neighbor(c, Facing(f))
	}
	return out
}

// DirectionTo returns which of the 6 hex directions most closely points from
// one coordinate toward another, via integer dot products against the cube
// direction vectors.
func DirectionTo(from, to Coord) Facing {
	if from == to {
		return FacingN
	}
	fc := from.Cube()
	tc := to.Cube()
	dx := tc.X - fc.X
	dy := tc.Y - fc.Y
	dz := tc.Z - fc.Z

	best := FacingN
	bestDot := -(1 << 30)
	for f, d := range facingDirs {
		dot := dx*d.X + dy*d.Y + dz*d.Z
		if dot > bestDot {
			bestDot = dot
			best = Facing(f)
		}
	}
	return best
}

// ─── Rings, Spirals, Lines ──────────────────────────────────────────────────

// Ring returns the 6r coordinates at exactly distance r from center.
// r=0 returns the center alone.
func Ring(center Coord, r int) []Coord {
	if r <= 0 {
		return []Coord{center}
	}
	out := make([]Coord, 0, 6*r)
	// Start r hexes out along SW, then walk each of the 6 sides.
	cur := center
	for i := 0; i < r; i++ {
		cur = Neighbor(cur, FacingSW)
	}
	for side := 0; side < NumFacings; side++ {
		for step := 0; step < r; step++ {
			out = append(out, cur)
			cur = Neighbor(cur, Facing(side))
		}
	}
	return out
}

// Spiral returns center plus every ring out to radius r, in ring order.
func Spiral(center Coord, r int) []Coord {
	out := []Coord{center}
	for i := 1; i <= r; i++ {
		out = append(out, Ring(center, i)...)
	}
	return out
}

// InRange returns every coordinate within distance r of center.
// Agrees in count with Spiral: 1 + 6·(1+2+…+r).
func InRange(center Coord, r int) []Coord {
	cc := center.Cube()
	var out []Coord
	for dx := -r; dx <= r; dx++ {
		lo := maxInt(-r, -dx-r)
		hi := minInt(r, -dx+r)
		for dy := lo; dy <= hi; dy++ {
			dz := -dx - dy
			out = append(out, Cube{X: cc.X + dx, Y: cc.Y + dy, Z: cc.Z + dz}.Axial())
		}
	}
	return out
}

// Line returns the hexes from a to b inclusive, length Distance+1.
// Uses cube coordinate interpolation rounded to the nearest hex.
func Line(a, b Coord) []Coord {
	dist := Distance(a, b)
	out := make([]Coord, 0, dist+1)
	if dist == 0 {
		return append(out, a)
	}

	ac := a.Cube()
	bc := b.Cube()
	for i := 0; i <= dist; i++ {
		t := float64(i) / float64(dist)
		x := lerp(float64(ac.X), float64(bc.X), t)
		y := lerp(float64(ac.Y), float64(bc.Y), t)
		z := lerp(float64(ac.Z), float64(bc.Z), t)
		out = append(out, cubeRound(x, y, z).Axial())
	}
	return out
}

// Between returns the intervening hexes strictly between a and b.
func Between(a, b Coord) []Coord {
	line := Line(a, b)
	if len(line) <= 2 {
		return nil
	}
	return line[1 : len(line)-1]
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func cubeRound(x, y, z float64) Cube {
	rx := math.Round(x)
	ry := math.Round(y)
	rz := math.Round(z)

	dx := math.Abs(rx - x)
	dy := math.Abs(ry - y)
	dz := math.Abs(rz - z)

	if dx > dy && dx > dz {
		rx = -ry - rz
	} else if dy > dz {
		ry = -rx - rz
	} else {
		rz = -rx - ry
	}

	return Cube{X: int(rx), Y: int(ry), Z: int(rz)}
}

// ─── Facing ↔ Angle ─────────────────────────────────────────────────────────

// Angle returns the fixed angle for a facing: 0°, 60°, … 300°.
func (f Facing) Angle() int {
	return int(f.Normalize()) * 60
}

// FacingFromAngle maps an angle in degrees to the nearest facing (±30°).
func FacingFromAngle(deg float64) Facing {
	norm := math.Mod(deg, 360)
	if norm < 0 {
		norm += 360
	}
	return Facing(int(math.Round(norm / 60))).Normalize()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
