package chunk

import (
	"fmt"
	"strings"
)

// Disassemble renders every instruction in the chunk as human-readable
// text, used only under the CLI's debug disassemble/--trace toggles.
func (c *Chunk) Disassemble(name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		var line string
		line, offset = c.DisassembleInstruction(offset)
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DisassembleInstruction formats the instruction at offset and returns
// the offset of the next instruction.
func (c *Chunk) DisassembleInstruction(offset int) (string, int) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(&sb, "%4d ", c.Lines[offset])
	}

	op := OpCode(c.Code[offset])
	switch op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal:
		return c.constantInstruction(sb.String(), op, offset)
	case OpGetLocal, OpSetLocal, OpCall:
		return c.byteInstruction(sb.String(), op, offset)
	case OpJump, OpJumpIfFalse:
		return c.jumpInstruction(sb.String(), op, offset, 1)
	case OpLoop:
		return c.jumpInstruction(sb.String(), op, offset, -1)
	default:
		sb.WriteString(op.String())
		return sb.String(), offset + 1
	}
}

func (c *Chunk) constantInstruction(prefix string, op OpCode, offset int) (string, int) {
	idx := c.Code[offset+1]
	var val string
	if int(idx) < len(c.Constants) {
		val = c.Constants[idx].String()
	}
	return fmt.Sprintf("%s%-16s %4d '%s'", prefix, op, idx, val), offset + 2
}

func (c *Chunk) byteInstruction(prefix string, op OpCode, offset int) (string, int) {
	slot := c.Code[offset+1]
	return fmt.Sprintf("%s%-16s %4d", prefix, op, slot), offset + 2
}

func (c *Chunk) jumpInstruction(prefix string, op OpCode, offset, sign int) (string, int) {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	target := offset + 3 + sign*jump
	return fmt.Sprintf("%s%-16s %4d -> %d", prefix, op, offset, target), offset + 3
}
