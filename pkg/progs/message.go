package progs

import (
	"github.com/crystal-mush/goqwsv/pkg/wire"
)

// --- Write* ---

// writeDest routes an encoded value to the destination code in parameter 0.
func writeDest(c *Context, p []byte) error {
	dest := int(c.Float(0))
	if err := c.Router.Write(dest, c.G.MsgEntity, p); err != nil {
		return wrapRun(err, "WriteDest")
	}
	return nil
}

func fnWriteByte(c *Context) error {
	return writeDest(c, wire.AppendByte(nil, int(c.Float(1))))
}

func fnWriteChar(c *Context) error {
	return writeDest(c, wire.AppendChar(nil, int(c.Float(1))))
}

func fnWriteShort(c *Context) error {
	return writeDest(c, wire.AppendShort(nil, int(c.Float(1))))
}

func fnWriteLong(c *Context) error {
	return writeDest(c, wire.AppendLong(nil, int(c.Float(1))))
}

func fnWriteCoord(c *Context) error {
	return writeDest(c, wire.AppendCoord(nil, c.Float(1)))
}

func fnWriteAngle(c *Context) error {
	return writeDest(c, wire.AppendAngle(nil, c.Float(1)))
}

func fnWriteString(c *Context) error {
	s, err := c.String(1)
	if err != nil {
		return err
	}
	return writeDest(c, wire.AppendString(nil, s))
}

func fnWriteEntity(c *Context) error {
	return writeDest(c, wire.AppendEntity(nil, c.Entity(1)))
}

// fnMulticast hands the multicast buffer to the visibility layer and
// clears it.
func fnMulticast(c *Context) error {
	buf := c.Router.Multicast
	defer buf.Clear()
	return wrapRun(c.World.Multicast(c.Vector(0), int(c.Float(1)), buf.Bytes()), "multicast")
}

// --- Static world ---

func fnLightStyle(c *Context) error {
	style := int(c.Float(0))
	val, err := c.String(1)
	if err != nil {
		return err
	}
	if err := c.Host.SetLightStyle(style, val); err != nil {
		return wrapRun(err, "lightstyle")
	}
	if !c.Host.Active() {
		return nil
	}
	c.Router.ReliableAll(wire.LightStyleMessage(style, val))
	return nil
}

// fnMakeStatic moves an entity into the signon buffer as a static entity
// and frees it.
func fnMakeStatic(c *Context) error {
	ent := c.Entity(0)
	info, err := c.Entities.Static(ent)
	if err != nil {
		return wrapRun(err, "makestatic")
	}
	idx := c.Assets.ModelIndex(info.Model)
	if idx <= 0 {
		return nil
	}
	p := wire.AppendByte(nil, wire.SvcSpawnStatic)
	p = wire.AppendByte(p, idx)
	p = wire.AppendByte(p, info.Frame)
	p = wire.AppendByte(p, info.Colormap)
	p = wire.AppendByte(p, info.Skin)
	for i := 0; i < 3; i++ {
		p = wire.AppendCoord(p, info.Origin[i])
		p = wire.AppendAngle(p, info.Angles[i])
	}
	if _, err := c.Router.Signon.Write(p); err != nil {
		return wrapRun(err, "makestatic")
	}
	return wrapRun(c.Entities.Remove(ent), "makestatic")
}

func fnAmbientSound(c *Context) error {
	pos := c.Vector(0)
	sample, err := c.String(1)
	if err != nil {
		return err
	}
	vol, atten := c.Float(2), c.Float(3)
	num := c.Assets.SoundIndex(sample)
	if num < 0 {
		c.print("no precache: %s\n", sample)
		return nil
	}
	p := wire.AppendByte(nil, wire.SvcSpawnStaticSound)
	for i := 0; i < 3; i++ {
		p = wire.AppendCoord(p, pos[i])
	}
	p = wire.AppendByte(p, num)
	p = wire.AppendByte(p, int(vol*255))
	p = wire.AppendByte(p, int(atten*64))
	if _, err := c.Router.Signon.Write(p); err != nil {
		return wrapRun(err, "ambientsound")
	}
	return nil
}
