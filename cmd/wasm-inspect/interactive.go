package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-embed/engine"
	"github.com/wippyai/wasm-embed/externals"
	"github.com/wippyai/wasm-embed/imports"
	"github.com/wippyai/wasm-embed/store"
	"github.com/wippyai/wasm-embed/types"
	"github.com/wippyai/wasm-embed/wasi"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	eng      *engine.Engine
	sctx     *store.Context
	instance *engine.Instance
	filename string
	result   string
	funcs    []funcInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type funcInfo struct {
	fn   *externals.Function
	name string
	ty   types.FunctionType
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(filename string) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		state:    stateSelectFunc,
	}
}

type loadedMsg struct {
	err      error
	eng      *engine.Engine
	sctx     *store.Context
	instance *engine.Instance
	funcs    []funcInfo
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	eng, err := engine.New(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}

	mod, err := eng.Compile(ctx, data)
	if err != nil {
		eng.Close(ctx)
		return loadedMsg{err: err}
	}

	sctx := store.NewContext(nil)
	env := wasi.NewEnv(wasi.EnvConfig{Stdout: os.Stdout, Stderr: os.Stderr})
	reg := imports.New()
	if usesNamespace(mod, wasi.Namespace) {
		reg = env.ImportObject(sctx)
	}

	instance, err := eng.Instantiate(ctx, sctx, mod, reg, engine.InstanceConfig{})
	if err != nil {
		eng.Close(ctx)
		return loadedMsg{err: err}
	}
	if ext, ok := instance.GetExport("memory"); ok {
		if mem, ok := ext.Memory(); ok {
			env.SetMemory(mem)
		}
	}

	var funcs []funcInfo
	for _, exp := range mod.ExportTypes() {
		ft, ok := exp.Type.(types.FunctionType)
		if !ok {
			continue
		}
		ext, ok := instance.GetExport(exp.Name)
		if !ok {
			continue
		}
		fn, ok := ext.Function()
		if !ok {
			continue
		}
		funcs = append(funcs, funcInfo{name: exp.Name, ty: ft, fn: fn})
	}

	return loadedMsg{funcs: funcs, eng: eng, sctx: sctx, instance: instance}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			ctx := context.Background()
			if m.instance != nil {
				m.instance.Close(ctx)
			}
			if m.eng != nil {
				m.eng.Close(ctx)
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.funcs = msg.funcs
		m.eng = msg.eng
		m.sctx = msg.sctx
		m.instance = msg.instance

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.ty.Params))
	for i, p := range f.ty.Params {
		ti := textinput.New()
		ti.Placeholder = p.String()
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	f := m.funcs[m.selected]

	args := make([]externals.Value, len(m.inputs))
	for i, input := range m.inputs {
		v, err := parseValue(input.Value(), f.ty.Params[i])
		if err != nil {
			return callResultMsg{err: err}
		}
		args[i] = v
	}

	results, err := f.fn.Call(m.sctx, args...)
	if err != nil {
		return callResultMsg{err: err}
	}

	var parts []string
	for _, r := range results {
		parts = append(parts, formatValue(r))
	}
	if len(parts) == 0 {
		parts = []string{"(no results)"}
	}
	return callResultMsg{result: strings.Join(parts, ", ")}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.instance == nil {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(headingStyle.Render("WASM Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("Module exports no functions.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + m.formatFunc(f)))
			} else {
				b.WriteString(cursor + m.formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", nameStyle.Render(f.name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeColStyle.Render(f.ty.Params[i].String()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", nameStyle.Render(f.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(f funcInfo) string {
	return nameStyle.Render(f.name) + " " + typeColStyle.Render(f.ty.String())
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
