package chip8

import (
	"strings"
	"testing"
)

func TestOpFields(t *testing.T) {
	op := Op(0xD12F)
	if op.Group() != 0xD || op.X() != 1 || op.Y() != 2 || op.N() != 0xF {
		t.Errorf("fields of %.4x are %x %x %x %x", uint16(op), op.Group(), op.X(), op.Y(), op.N())
	}
	if g, w := Op(0xA2EA).NNN(), uint16(0x2EA); g != w {
		t.Errorf("NNN is %.3x, want %.3x", g, w)
	}
	if g, w := Op(0x71FE).NN(), byte(0xFE); g != w {
		t.Errorf("NN is %.2x, want %.2x", g, w)
	}
}

func TestOpString(t *testing.T) {
	for op, want := range map[Op]string{
		0x00E0: "CLS",
		0x00EE: "RET",
		0x1228: "JP 0x228",
		0x2345: "CALL 0x345",
		0x600C: "LD V0, 0x0C",
		0x7009: "ADD V0, 0x09",
		0x8124: "ADD V1, V2",
		0xA22A: "LD I, 0x22A",
		0xD01F: "DRW V0, V1, 15",
		0xF233: "LD B, V2",
		0xF565: "LD V5, [I]",
		0xFFFF: "DW 0xFFFF",
	} {
		if got := op.String(); got != want {
			t.Errorf("Op(%.4x).String() returned %q, want %q", uint16(op), got, want)
		}
	}
}

// Every value the machine executes has a mnemonic.
func TestOpNames(t *testing.T) {
	ops := []Op{
		0x00E0, 0x00EE, 0x1000, 0x2000, 0x3000, 0x4000, 0x5000, 0x6000, 0x7000,
		0x8000, 0x8001, 0x8002, 0x8003, 0x8004, 0x8005, 0x8006, 0x8007, 0x800E,
		0x9000, 0xA000, 0xB000, 0xC000, 0xD000, 0xE09E, 0xE0A1,
		0xF007, 0xF00A, 0xF015, 0xF018, 0xF01E, 0xF029, 0xF033, 0xF055, 0xF065,
	}
	for _, op := range ops {
		if op.Name() == "" {
			t.Errorf("Op(%.4x) has no name", uint16(op))
		}
	}
}

func TestDisassemble(t *testing.T) {
	m := newTestMachine(t, []byte{0x00, 0xE0, 0xA2, 0x2A}, ModernQuirks())
	got := m.Disassemble(ProgramStart, 2)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), got)
	}
	if w := "200  00e0  CLS"; lines[0] != w {
		t.Errorf("line 0 is %q, want %q", lines[0], w)
	}
	if w := "202  a22a  LD I, 0x22A"; lines[1] != w {
		t.Errorf("line 1 is %q, want %q", lines[1], w)
	}
}
