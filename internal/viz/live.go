package viz

import (
	"fmt"
	"image"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/integrators"
	"github.com/san-kum/brownsim/internal/metrics"
	"github.com/san-kum/brownsim/internal/rng"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailLength     = 60
)

// Snapshot stores state at a specific time for replay.
type Snapshot struct {
	State       dynamo.ParticleState
	Time        float64
	Temperature float64
}

type TickMsg time.Time

// tunable is a parameter adjustable from the keyboard.
type tunable struct {
	name  string
	field func(*dynamo.Params) *float64
	floor float64
}

var tunables = []tunable{
	{"gamma", func(p *dynamo.Params) *float64 { return &p.Gamma }, 1e-3},
	{"temp", func(p *dynamo.Params) *float64 { return &p.Temperature }, 1e-3},
	{"force", func(p *dynamo.Params) *float64 { return &p.Force }, 1e-2},
	{"dt", func(p *dynamo.Params) *float64 { return &p.Dt }, 1e-5},
}

type Options struct {
	Title        string
	StepsPerTick int
	// MaxSteps pauses the view after that many steps; 0 runs forever.
	MaxSteps int
	// Trails is the number of particles whose recent path is drawn.
	Trails int
}

func DefaultOptions() Options {
	return Options{Title: "brownian dynamics", StepsPerTick: 1, Trails: 8}
}

// Model contains simulation state, visualization buffers, and UI context.
type Model struct {
	params        dynamo.Params
	initialParams dynamo.Params
	src           *rng.Stream
	integrator    *integrators.Langevin
	state         dynamo.ParticleState
	initialState  dynamo.ParticleState
	t             float64
	steps         int
	opts          Options
	width, height int
	canvas        *Canvas
	camera        *Camera
	trails        [][]Vec3
	tempHistory   []float64
	history       []Snapshot
	playHead      int
	running       bool
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
	selected      int
	message       string
}

// NewModel prepares a live run of the splitting integrator from x0. The
// random stream keeps advancing across resets.
func NewModel(params dynamo.Params, x0 dynamo.ParticleState, src *rng.Stream, opts Options) Model {
	if opts.StepsPerTick < 1 {
		opts.StepsPerTick = 1
	}
	opts.Trails = min(max(opts.Trails, 0), x0.Len())

	cam := NewCamera()
	cam.RotX, cam.RotY = -0.4, 0.6
	cam.Zoom = 1.5 / params.Box

	return Model{
		params:        params,
		initialParams: params,
		src:           src,
		integrator:    integrators.NewLangevin(params, src),
		state:         x0.Clone(),
		initialState:  x0.Clone(),
		opts:          opts,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		camera:        cam,
		trails:        make([][]Vec3, opts.Trails),
		tempHistory:   make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		running:       true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.selected = (m.selected + 1) % len(tunables)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "n":
			m.params.Noise = !m.params.Noise
			m.rebuild()
		case "g":
			if m.recording {
				m.message = m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.advance()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) adjustParam(factor float64) {
	tn := tunables[m.selected]
	next := m.params
	v := tn.field(&next)
	switch {
	case *v == 0 && factor > 1:
		*v = tn.floor
	case math.Abs(*v*factor) < tn.floor && factor < 1:
		*v = 0
	default:
		*v *= factor
	}
	if tn.name == "dt" && *v == 0 {
		*v = tn.floor
	}
	if err := next.Validate(); err != nil {
		m.message = err.Error()
		return
	}
	m.params = next
	m.rebuild()
}

func (m *Model) rebuild() {
	m.integrator = integrators.NewLangevin(m.params, m.src)
}

// advance runs one tick worth of integrator steps.
func (m *Model) advance() {
	for i := 0; i < m.opts.StepsPerTick; i++ {
		if m.opts.MaxSteps > 0 && m.steps >= m.opts.MaxSteps {
			m.running = false
			return
		}
		m.integrator.Step(&m.state)
		m.t += m.params.Dt
		m.steps++
	}

	for i := range m.trails {
		m.trails[i] = append(m.trails[i], FromVec(m.state.Position[i]))
		if len(m.trails[i]) > trailLength {
			m.trails[i] = m.trails[i][1:]
		}
	}

	temp := metrics.KineticTemperature(m.state)
	m.tempHistory = append(m.tempHistory, temp)
	if len(m.tempHistory) > historyCapacity {
		m.tempHistory = m.tempHistory[1:]
	}

	m.history = append(m.history, Snapshot{State: m.state.Clone(), Time: m.t, Temperature: temp})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial state and parameters.
func (m *Model) reset() {
	m.t = 0
	m.steps = 0
	m.state = m.initialState.Clone()
	m.params = m.initialParams
	m.rebuild()
	for i := range m.trails {
		m.trails[i] = m.trails[i][:0]
	}
	m.tempHistory = m.tempHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.running = true
}

// displayed returns the snapshot under the play head, or the live state.
func (m *Model) displayed() (dynamo.ParticleState, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		snap := m.history[m.playHead]
		return snap.State, snap.Time
	}
	return m.state, m.t
}

// View renders the TUI interface.
func (m Model) View() string {
	state, t := m.displayed()
	m.draw()
	canvasView := lipgloss.NewStyle().Padding(1, 2).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.opts.Title)) + "\n\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.tempHistory) > 1 {
		chart := asciigraph.Plot(m.tempHistory,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic temperature"))
		s.WriteString(GraphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3f", t))
	row("Step", fmt.Sprintf("%d", m.steps))
	row("T kinetic", fmt.Sprintf("%.3f", metrics.KineticTemperature(state)))
	row("Particles", fmt.Sprintf("%d", state.Len()))
	row("Noise", fmt.Sprintf("%t", m.params.Noise))
	row("Wrap", m.params.EffectiveWrap().String())

	s.WriteString("\nPARAMETERS\n")
	for i, tn := range tunables {
		p := m.params
		val, initial := *tn.field(&p), *tn.field(&m.initialParams)
		if initial == 0 {
			initial = tn.floor
		}
		barWidth, ratio := 10, val/(2.0*initial)
		ratio = math.Max(0, math.Min(1, ratio))
		filled := int(ratio * float64(barWidth))
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
		line := fmt.Sprintf("%-6s %s %.4g", tn.name, bar, val)
		if i == m.selected {
			s.WriteString(ActiveParam.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + Subtle.Render(line) + "\n")
		}
	}
	if m.message != "" {
		s.WriteString("\n" + Subtle.Render(m.message) + "\n")
	}
	s.WriteString(KeyHint.Render("\nSP:Pause R:Reset Q:Quit N:Noise\nT:Theme  G:Record ?:Help\n[ ]:Replay ↑↓:Tune Tab:Next"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, PanelStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  N        - Toggle thermostat noise  ║
║  [ ]      - Replay history           ║
║  x y z    - Rotate camera            ║
║  + -      - Zoom                     ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) status() string {
	var status string
	switch {
	case m.playHead != -1 && m.playHead < len(m.history):
		lag := m.history[m.playHead].Time - m.history[len(m.history)-1].Time
		status = StatusPaused.Render(fmt.Sprintf("REPLAY (%.2f)", lag))
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	default:
		status = StatusRunning.Render("RUNNING")
	}
	if m.recording {
		status += " " + StatusRecording.Render("● REC")
	}
	return status
}

// center is the point drawn at the middle of the view.
func (m *Model) center(state dynamo.ParticleState) Vec3 {
	wrap := m.params.EffectiveWrap()
	if wrap != dynamo.WrapNone {
		lo, hi := wrap.Bounds(m.params.Box)
		c := (lo + hi) / 2
		return Vec3{c, c, c}
	}
	var sum Vec3
	for _, r := range state.Position {
		sum = sum.Add(FromVec(r))
	}
	if state.Len() == 0 {
		return sum
	}
	return sum.Scale(1 / float64(state.Len()))
}

// draw renders the box, trails and particles onto the canvas.
func (m *Model) draw() {
	state, _ := m.displayed()
	m.canvas.Clear()

	center := m.center(state)
	var wf *Wireframe
	if m.params.EffectiveWrap() != dynamo.WrapNone {
		wf = CreateCubeWireframe(m.params.Box)
	} else {
		wf = CreateAxesWireframe(m.params.Box / 2)
	}

	if m.playHead == -1 {
		for _, trail := range m.trails {
			for i := 1; i < len(trail); i++ {
				a, b := trail[i-1], trail[i]
				// skip segments that cross a periodic boundary
				if b.Sub(a).Length() > m.params.Box/2 {
					continue
				}
				wf.AddEdge(a.Sub(center), b.Sub(center))
			}
		}
	}
	for _, r := range state.Position {
		wf.AddPoint(FromVec(r).Sub(center))
	}

	Render3D(m.canvas, wf, m.camera)
}

func (m *Model) captureFrame() {
	m.frames = append(m.frames, m.canvas.Image(8, 16))
}

// GIFName is the file written when a recording stops.
func (m *Model) GIFName() string {
	return fmt.Sprintf("live_G%g_T%g_N%d.gif", m.params.Gamma, m.params.Temperature, m.params.Particles)
}

func (m *Model) saveGIF() string {
	if len(m.frames) == 0 {
		return "nothing recorded"
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	name := m.GIFName()
	f, err := os.Create(name)
	if err != nil {
		return err.Error()
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return err.Error()
	}
	return "saved " + name
}

// Run starts the live view on the alternate screen and blocks until quit.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
