package progs

import "math"

// --- Vectors ---

// angleVectors converts pitch/yaw/roll degrees into forward, right and up
// unit vectors.
func angleVectors(a Vec3) (forward, right, up Vec3) {
	const toRad = math.Pi * 2 / 360
	sy, cy := math.Sincos(float64(a[1]) * toRad)
	sp, cp := math.Sincos(float64(a[0]) * toRad)
	sr, cr := math.Sincos(float64(a[2]) * toRad)

	forward = Vec3{float32(cp * cy), float32(cp * sy), float32(-sp)}
	right = Vec3{
		float32(-sr*sp*cy + cr*sy),
		float32(-sr*sp*sy - cr*cy),
		float32(-sr * cp),
	}
	up = Vec3{
		float32(cr*sp*cy + sr*sy),
		float32(cr*sp*sy - sr*cy),
		float32(cr * cp),
	}
	return forward, right, up
}

func length(v Vec3) float64 {
	return math.Sqrt(float64(v[0])*float64(v[0]) + float64(v[1])*float64(v[1]) + float64(v[2])*float64(v[2]))
}

func fnMakeVectors(c *Context) error {
	c.G.VForward, c.G.VRight, c.G.VUp = angleVectors(c.Vector(0))
	return nil
}

func fnNormalize(c *Context) error {
	v := c.Vector(0)
	l := length(v)
	if l == 0 {
		c.ReturnVector(Vec3{})
		return nil
	}
	inv := 1 / l
	c.ReturnVector(Vec3{float32(float64(v[0]) * inv), float32(float64(v[1]) * inv), float32(float64(v[2]) * inv)})
	return nil
}

func fnVlen(c *Context) error {
	c.ReturnFloat(float32(length(c.Vector(0))))
	return nil
}

func fnVecToYaw(c *Context) error {
	v := c.Vector(0)
	var yaw float32
	if v[0] != 0 || v[1] != 0 {
		yaw = float32(int(math.Atan2(float64(v[1]), float64(v[0])) * 180 / math.Pi))
		if yaw < 0 {
			yaw += 360
		}
	}
	c.ReturnFloat(yaw)
	return nil
}

func fnVecToAngles(c *Context) error {
	v := c.Vector(0)
	var yaw, pitch float32
	if v[0] == 0 && v[1] == 0 {
		if v[2] > 0 {
			pitch = 90
		} else {
			pitch = 270
		}
	} else {
		yaw = float32(int(math.Atan2(float64(v[1]), float64(v[0])) * 180 / math.Pi))
		if yaw < 0 {
			yaw += 360
		}
		forward := math.Sqrt(float64(v[0])*float64(v[0]) + float64(v[1])*float64(v[1]))
		pitch = float32(int(math.Atan2(float64(v[2]), forward) * 180 / math.Pi))
		if pitch < 0 {
			pitch += 360
		}
	}
	c.ReturnVector(Vec3{pitch, yaw, 0})
	return nil
}

// aim has no autoaim: it returns the facing direction.
func fnAim(c *Context) error {
	c.ReturnVector(c.G.VForward)
	return nil
}

// --- Scalars ---

// fnRandom returns a value in [0,1].
func fnRandom(c *Context) error {
	c.ReturnFloat(float32(c.Rand.IntN(0x8000)) / 0x7fff)
	return nil
}

// fnRint rounds half away from zero.
func fnRint(c *Context) error {
	f := float64(c.Float(0))
	if f > 0 {
		c.ReturnFloat(float32(math.Trunc(f + 0.5)))
	} else {
		c.ReturnFloat(float32(math.Trunc(f - 0.5)))
	}
	return nil
}

func fnFloor(c *Context) error {
	c.ReturnFloat(float32(math.Floor(float64(c.Float(0)))))
	return nil
}

func fnCeil(c *Context) error {
	c.ReturnFloat(float32(math.Ceil(float64(c.Float(0)))))
	return nil
}

func fnFabs(c *Context) error {
	c.ReturnFloat(float32(math.Abs(float64(c.Float(0)))))
	return nil
}

func fnSin(c *Context) error {
	c.ReturnFloat(float32(math.Sin(float64(c.Float(0)))))
	return nil
}

func fnCos(c *Context) error {
	c.ReturnFloat(float32(math.Cos(float64(c.Float(0)))))
	return nil
}

func fnSqrt(c *Context) error {
	c.ReturnFloat(float32(math.Sqrt(float64(c.Float(0)))))
	return nil
}

func fnMin(c *Context) error {
	if c.Argc < 2 {
		return runErrorf("min: must supply at least 2 floats")
	}
	m := c.Float(0)
	for i := 1; i < c.Argc; i++ {
		m = min(m, c.Float(i))
	}
	c.ReturnFloat(m)
	return nil
}

func fnMax(c *Context) error {
	if c.Argc < 2 {
		return runErrorf("max: must supply at least 2 floats")
	}
	m := c.Float(0)
	for i := 1; i < c.Argc; i++ {
		m = max(m, c.Float(i))
	}
	c.ReturnFloat(m)
	return nil
}
