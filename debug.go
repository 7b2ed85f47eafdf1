package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/bradleyjkemp/memviz"
	"github.com/gdamore/tcell/v2"
	"github.com/retroenv/retrogolib/log"
	"github.com/rivo/tview"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/host"
)

// debugRunner is the part of host.Runner the debugger drives.
type debugRunner interface {
	Debug(cmd string, addr uint16)
}

type debugger struct {
	run   debugRunner
	log   *log.Logger
	scale int // of screenshots

	logView *tview.TextView
	code    *tview.TextView
	state   *tview.TextView
	input   *tview.InputField
	cols    *tview.Flex
	rows    *tview.Flex
	app     *tview.Application

	mu   sync.Mutex
	syms symbols
	brk  *symbol
	last chip8.State
	disp chip8.Display
}

func newDebugger(scale int) *debugger {
	d := &debugger{
		scale: scale,
		logView: tview.NewTextView().
			SetMaxLines(1000),
		code: tview.NewTextView().
			SetWrap(false),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.logView.SetChangedFunc(func() { d.app.Draw() })
	d.code.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.code, 40, 0, false).
		AddItem(d.logView, 0, 1, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 4, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case "b", "break":
				for _, s := range d.symbols().withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := strings.TrimSpace(d.input.GetText())
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd == "exit" || cmd == "q" {
			d.app.Stop()
			return
		}
		if err := d.exec(cmd); err != nil {
			d.log.Error("Debugger command failed", log.String("command", cmd), log.Err(err))
		}
	})
	return d
}

// Run runs the debugger user interface until the user exits.
func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) Stop() { d.app.Stop() }

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

// exec executes a debugger command line.
func (d *debugger) exec(line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "p", "pause", "s", "step", "c", "continue":
		d.run.Debug(cmd, 0)

	case "b", "break":
		if arg == "" {
			d.mu.Lock()
			d.brk = nil
			d.mu.Unlock()
			d.run.Debug("break", 0)
			return nil
		}
		s, ok := d.symbols().resolve(arg)
		if !ok {
			return fmt.Errorf("invalid address %q", arg)
		}
		d.mu.Lock()
		d.brk = &s
		d.mu.Unlock()
		d.run.Debug("break", s.addr)

	case "shot":
		if arg == "" {
			return fmt.Errorf("usage: shot <file.png>")
		}
		d.mu.Lock()
		disp := d.disp
		d.mu.Unlock()
		if err := writeFile(arg, func(w io.Writer) error {
			return host.WritePNG(w, &disp, d.scale)
		}); err != nil {
			return err
		}
		d.log.Info("Wrote screenshot", log.String("file", arg))

	case "graph":
		if arg == "" {
			return fmt.Errorf("usage: graph <file.dot>")
		}
		d.mu.Lock()
		st := d.last
		d.mu.Unlock()
		if err := writeFile(arg, func(w io.Writer) error {
			memviz.Map(w, &st)
			return nil
		}); err != nil {
			return err
		}
		d.log.Info("Wrote state graph", log.String("file", arg))

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func writeFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// StateFunc records the machine state and refreshes the views.
// It is called from the runner's goroutine.
func (d *debugger) StateFunc(m *chip8.Machine, k host.StateKind) {
	st := m.State()
	d.mu.Lock()
	d.last = st
	d.disp = m.Display
	syms, brk := d.syms, d.brk
	d.mu.Unlock()

	if k == host.QuietState {
		return
	}
	var (
		code  = disassembly(syms, brk, m)
		state = stateMsg(syms, st, k)
	)
	d.app.QueueUpdateDraw(func() {
		switch k {
		case host.ClearState, host.StepState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case host.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case host.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		}
		d.code.SetText(code)
		d.state.SetText(state)
	})
}

func stateMsg(syms symbols, st chip8.State, k host.StateKind) string {
	var pcSym, sym string
	if s := syms.forAddr(st.PC); len(s) > 0 {
		pcSym = s[0].label + ": "
	}
	if addr, ok := addrForOp(st.Op); ok {
		if s := syms.forAddr(addr); len(s) > 0 {
			sym = " -> " + s[0].String()
		}
	}
	kind := "       "
	switch k {
	case host.BreakState:
		kind = "[break]"
	case host.PauseState:
		kind = "[pause]"
	case host.StepState:
		kind = "[step] "
	}
	return fmt.Sprintf("%s %s%v%s\n%v\n", kind, pcSym, st.Op, sym, st)
}

// disassembly lists the instructions around the program counter, marking
// the current instruction and the breakpoint.
func disassembly(syms symbols, brk *symbol, m *chip8.Machine) string {
	const before, total = 4, 16
	start := m.PC
	if start >= 2*before {
		start -= 2 * before
	} else {
		start = 0
	}
	var b strings.Builder
	lines := strings.SplitAfter(m.Disassemble(start, total), "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		addr := (start + uint16(2*i)) & (chip8.MemSize - 1)
		for _, s := range syms.forAddr(addr) {
			fmt.Fprintf(&b, "%s:\n", s.label)
		}
		switch {
		case addr == m.PC:
			b.WriteString("> ")
		case brk != nil && addr == brk.addr:
			b.WriteString("* ")
		default:
			b.WriteString("  ")
		}
		b.WriteString(line)
	}
	return b.String()
}

// captureOutput sends everything written to the process's standard output
// and standard error to w until restore is called, so that log messages
// appear inside the debugger rather than over it.
func captureOutput(w io.Writer) (restore func(), err error) {
	r, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	stdout, stderr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = pw, pw
	done := make(chan struct{})
	go func() {
		io.Copy(w, r)
		close(done)
	}()
	return func() {
		os.Stdout, os.Stderr = stdout, stderr
		pw.Close()
		<-done
		r.Close()
	}, nil
}
