package wire

// Server-to-client message tags.
const (
	SvcBad              = 0
	SvcNop              = 1
	SvcDisconnect       = 2
	SvcUpdateStat       = 3
	SvcSetView          = 5
	SvcSound            = 6
	SvcPrint            = 8
	SvcStuffText        = 9
	SvcSetAngle         = 10
	SvcServerData       = 11
	SvcLightStyle       = 12
	SvcUpdateFrags      = 14
	SvcStopSound        = 16
	SvcDamage           = 19
	SvcSpawnStatic      = 20
	SvcSpawnBaseline    = 22
	SvcTempEntity       = 23
	SvcSetPause         = 24
	SvcCenterPrint      = 26
	SvcKilledMonster    = 27
	SvcFoundSecret      = 28
	SvcSpawnStaticSound = 29
	SvcIntermission     = 30
	SvcFinale           = 31
)

// Print levels. A client only receives prints at or above its message level.
const (
	PrintLow    = 0
	PrintMedium = 1
	PrintHigh   = 2
	PrintChat   = 3
)

// PrintMessage encodes an svc_print message.
func PrintMessage(level int, s string) []byte {
	msg := make([]byte, 0, len(s)+3)
	msg = AppendByte(msg, SvcPrint)
	msg = AppendByte(msg, level)
	return AppendString(msg, s)
}

// CenterPrintMessage encodes an svc_centerprint message.
func CenterPrintMessage(s string) []byte {
	msg := make([]byte, 0, len(s)+2)
	msg = AppendByte(msg, SvcCenterPrint)
	return AppendString(msg, s)
}

// StuffTextMessage encodes an svc_stufftext message.
func StuffTextMessage(s string) []byte {
	msg := make([]byte, 0, len(s)+2)
	msg = AppendByte(msg, SvcStuffText)
	return AppendString(msg, s)
}

// LightStyleMessage encodes an svc_lightstyle message.
func LightStyleMessage(style int, val string) []byte {
	msg := make([]byte, 0, len(val)+3)
	msg = AppendByte(msg, SvcLightStyle)
	msg = AppendChar(msg, style)
	return AppendString(msg, val)
}
