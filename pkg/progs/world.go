package progs

// --- Entities ---

func fnSpawn(c *Context) error {
	ent, err := c.Entities.Spawn()
	if err != nil {
		return wrapRun(err, "spawn")
	}
	c.ReturnEntity(ent)
	return nil
}

func fnRemove(c *Context) error {
	return wrapRun(c.Entities.Remove(c.Entity(0)), "remove")
}

// fnFind returns the next live entity after start whose string field
// equals the match, or 0.
func fnFind(c *Context) error {
	start, field := c.Entity(0), int(c.Int(1))
	match, err := c.String(2)
	if err != nil {
		return err
	}
	for e := start + 1; e < c.Entities.NumEdicts(); e++ {
		if c.Entities.IsFree(e) {
			continue
		}
		v, err := c.Entities.StringField(e, field)
		if err != nil {
			return wrapRun(err, "find")
		}
		if v == match {
			c.ReturnEntity(e)
			return nil
		}
	}
	c.ReturnEntity(0)
	return nil
}

func fnNextEnt(c *Context) error {
	for e := c.Entity(0) + 1; e < c.Entities.NumEdicts(); e++ {
		if !c.Entities.IsFree(e) {
			c.ReturnEntity(e)
			return nil
		}
	}
	c.ReturnEntity(0)
	return nil
}

func fnSetModel(c *Context) error {
	ent := c.Entity(0)
	name, err := c.String(1)
	if err != nil {
		return err
	}
	idx := c.Assets.ModelIndex(name)
	if idx < 0 {
		return runErrorf("no precache: %s", name)
	}
	return wrapRun(c.Entities.SetModel(ent, name, idx), "setmodel")
}

func fnSetSpawnParms(c *Context) error {
	cl, err := c.Router.Clients.Slot(c.Entity(0))
	if err != nil {
		return &RunError{Msg: "Entity is not a client", Err: err}
	}
	c.G.Parms = cl.SpawnParms
	return nil
}

// --- Precache ---

func (c *Context) precacheName(what string) (string, error) {
	if !c.Host.Loading() {
		return "", runErrorf("precache_%s: Precache can only be done in spawn functions", what)
	}
	c.ReturnInt(c.Int(0))
	s, err := c.String(0)
	if err != nil {
		return "", err
	}
	if s == "" || s[0] <= ' ' {
		return "", runErrorf("precache_%s: Bad string", what)
	}
	return s, nil
}

func fnPrecacheSound(c *Context) error {
	s, err := c.precacheName("sound")
	if err != nil {
		return err
	}
	return wrapRun(c.Assets.PrecacheSound(s), "precache_sound")
}

func fnPrecacheModel(c *Context) error {
	s, err := c.precacheName("model")
	if err != nil {
		return err
	}
	return wrapRun(c.Assets.PrecacheModel(s), "precache_model")
}

// fnPrecacheFile only exists for the compiler's file lists.
func fnPrecacheFile(c *Context) error {
	c.ReturnInt(c.Int(0))
	return nil
}

// --- Physics and visibility ---

func fnSetOrigin(c *Context) error {
	c.Physics.SetOrigin(c.Entity(0), c.Vector(1))
	return nil
}

func fnSetSize(c *Context) error {
	c.Physics.SetSize(c.Entity(0), c.Vector(1), c.Vector(2))
	return nil
}

func fnTraceLine(c *Context) error {
	c.G.Trace = c.Physics.TraceLine(c.Vector(0), c.Vector(1), c.Float(2) != 0, c.Entity(3))
	return nil
}

func fnFindRadius(c *Context) error {
	c.ReturnEntity(c.Physics.FindRadius(c.Vector(0), c.Float(1)))
	return nil
}

// fnWalkMove moves self; self is restored because the move can run touch
// functions.
func fnWalkMove(c *Context) error {
	self := c.G.Self
	ok := c.Physics.WalkMove(self, c.Float(0), c.Float(1))
	c.G.Self = self
	c.ReturnBool(ok)
	return nil
}

func fnDropToFloor(c *Context) error {
	c.ReturnBool(c.Physics.DropToFloor(c.G.Self))
	return nil
}

func fnCheckBottom(c *Context) error {
	c.ReturnBool(c.Physics.CheckBottom(c.Entity(0)))
	return nil
}

func fnPointContents(c *Context) error {
	c.ReturnFloat(float32(c.Physics.PointContents(c.Vector(0))))
	return nil
}

func fnChangeYaw(c *Context) error {
	c.Physics.ChangeYaw(c.G.Self)
	return nil
}

func fnMoveToGoal(c *Context) error {
	c.Physics.MoveToGoal(c.G.Self, c.Float(0))
	return nil
}

func fnCheckClient(c *Context) error {
	c.ReturnEntity(c.World.CheckClient(c.G.Self))
	return nil
}

func fnSound(c *Context) error {
	ent, channel := c.Entity(0), int(c.Float(1))
	sample, err := c.String(2)
	if err != nil {
		return err
	}
	vol, atten := int(c.Float(3)*255), c.Float(4)
	switch {
	case vol < 0 || vol > 255:
		return runErrorf("sound: volume = %d", vol)
	case atten < 0 || atten > 4:
		return runErrorf("sound: attenuation = %f", atten)
	case channel < 0 || channel > 7:
		return runErrorf("sound: channel = %d", channel)
	}
	return wrapRun(c.World.StartSound(ent, channel, sample, vol, atten), "sound")
}
