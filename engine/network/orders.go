// Package network carries player orders from input to the simulation: a
// fixed binary encoding, an input-delay scheduler and replay files.
package network

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/1siamBot/unitcore/engine/command"
	"github.com/1siamBot/unitcore/engine/core"
)

// Order is a deterministic player instruction for one unit, applied at Tick
type Order struct {
	Tick         uint64
	PlayerID     int
	Entity       core.EntityID
	Command      command.CommandType
	TargetType   core.TargetType
	TargetEntity core.EntityID
	TargetX      float64
	TargetY      float64
	Append       bool // queue behind current orders instead of replacing them
}

// Target returns the target payload the order carries
func (o *Order) Target() core.TargetData {
	return core.TargetData{
		Entity: o.TargetEntity,
		Type:   o.TargetType,
		Pos:    core.Vec2{X: o.TargetX, Y: o.TargetY},
	}
}

// wireOrder is the fixed-size little-endian layout of an Order
type wireOrder struct {
	Tick         uint64
	PlayerID     int32
	Entity       uint64
	Command      uint8
	TargetType   uint8
	TargetEntity uint64
	TargetX      float64
	TargetY      float64
	Append       uint8
}

// Encode writes an order to binary
func (o *Order) Encode(w io.Writer) error {
	wo := wireOrder{
		Tick:         o.Tick,
		PlayerID:     int32(o.PlayerID),
		Entity:       uint64(o.Entity),
		Command:      uint8(o.Command),
		TargetType:   uint8(o.TargetType),
		TargetEntity: uint64(o.TargetEntity),
		TargetX:      o.TargetX,
		TargetY:      o.TargetY,
	}
	if o.Append {
		wo.Append = 1
	}
	if err := binary.Write(w, binary.LittleEndian, &wo); err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	return nil
}

// Decode reads an order from binary. A clean end of input returns io.EOF.
func (o *Order) Decode(r io.Reader) error {
	var wo wireOrder
	if err := binary.Read(r, binary.LittleEndian, &wo); err != nil {
		if err == io.EOF {
			return err
		}
		return fmt.Errorf("decode order: %w", err)
	}
	if command.CommandType(wo.Command) > command.Deposit {
		return fmt.Errorf("decode order: unknown command type %d", wo.Command)
	}
	*o = Order{
		Tick:         wo.Tick,
		PlayerID:     int(wo.PlayerID),
		Entity:       core.EntityID(wo.Entity),
		Command:      command.CommandType(wo.Command),
		TargetType:   core.TargetType(wo.TargetType),
		TargetEntity: core.EntityID(wo.TargetEntity),
		TargetX:      wo.TargetX,
		TargetY:      wo.TargetY,
		Append:       wo.Append != 0,
	}
	return nil
}
