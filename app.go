package main

import (
	"bytes"
	"context"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/calder/trestle/pkg/assembly"
	"github.com/calder/trestle/pkg/config"
	"github.com/calder/trestle/pkg/engine"
	"github.com/calder/trestle/pkg/mesh"
	"github.com/calder/trestle/pkg/observe"
	"github.com/calder/trestle/pkg/session"
	"github.com/calder/trestle/pkg/snapshot"
)

// ballColor and shaftColors give the frontend a default palette keyed by
// length class ordering.
var shaftColors = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via
// bindings and owns the current interactive session.
type App struct {
	ctx    context.Context
	log    *zap.Logger
	cfg    config.Config
	engine *engine.Engine
	sess   *session.Session
}

// BallData is the JSON-serializable ball sent to the frontend.
type BallData struct {
	ID       int        `json:"id"`
	Position [3]float64 `json:"position"`
	Locked   bool       `json:"locked"`
	Radius   float64    `json:"radius"`
}

// ShaftData is the JSON-serializable strut pose sent to the frontend.
type ShaftData struct {
	ID    int        `json:"id"`
	Start [3]float64 `json:"start"`
	End   [3]float64 `json:"end"`
	Bound bool       `json:"bound"`
	Color string     `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// SceneResult is the full scene returned to the frontend after an edit.
type SceneResult struct {
	Balls  []BallData      `json:"balls"`
	Shafts []ShaftData     `json:"shafts"`
	Errors []EvalErrorData `json:"errors"`
}

// ConnectResultData mirrors session.ConnectResult for the frontend.
type ConnectResultData struct {
	Success  bool    `json:"success"`
	Degraded bool    `json:"degraded"`
	MaxError float64 `json:"maxError"`
	Message  string  `json:"message"`
}

// NewApp creates a new App with default configuration.
func NewApp() *App {
	cfg := config.Default()
	log := observe.NewLogger(cfg.LogLevel)
	obs := observe.NewZap(log)
	return &App{
		log:    log,
		cfg:    cfg,
		engine: engine.NewEngine(cfg, obs),
		sess:   session.New(assembly.New(), cfg, obs),
	}
}

// startup is called by Wails on app startup. The context is saved so we
// can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate runs Trestle Lisp source, replacing the current session on
// success, and returns the resulting scene.
func (a *App) Evaluate(source string) SceneResult {
	sess, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, superseded).
		a.log.Error("evaluate failed", zap.Error(err))
		return SceneResult{Errors: []EvalErrorData{{Message: err.Error()}}}
	}
	if len(evalErrs) > 0 {
		result := SceneResult{}
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	a.sess = sess
	return a.Scene()
}

// Scene serializes the current assembly for rendering.
func (a *App) Scene() SceneResult {
	result := SceneResult{
		Balls:  []BallData{},
		Shafts: []ShaftData{},
		Errors: []EvalErrorData{},
	}
	asm := a.sess.Assembly()

	for _, nid := range asm.Nodes() {
		p := asm.Pos(nid)
		result.Balls = append(result.Balls, BallData{
			ID:       int(nid),
			Position: [3]float64{p.X, p.Y, p.Z},
			Locked:   asm.Locked(nid),
			Radius:   a.cfg.NodeRadius,
		})
	}

	for i, pl := range a.sess.Placements() {
		result.Shafts = append(result.Shafts, ShaftData{
			ID:    int(pl.Link),
			Start: [3]float64{pl.Start.X, pl.Start.Y, pl.Start.Z},
			End:   [3]float64{pl.End.X, pl.End.Y, pl.End.Z},
			Bound: pl.Bound,
			Color: shaftColors[i%len(shaftColors)],
		})
	}
	return result
}

// ProposeConnection attempts to bind a pending shaft to a target ball.
func (a *App) ProposeConnection(shaft int, target int) ConnectResultData {
	res := a.sess.ProposeConnection(assembly.LinkID(shaft), assembly.NodeID(target))
	return ConnectResultData{
		Success:  res.Success,
		Degraded: res.Degraded,
		MaxError: res.MaxError,
		Message:  res.Message,
	}
}

// DragBall moves a ball directly (no solving) and returns the refreshed
// scene. The frontend calls this during pointer drags.
func (a *App) DragBall(ball int, x, y, z float64) SceneResult {
	asm := a.sess.Assembly()
	id := assembly.NodeID(ball)
	if asm.ValidNode(id) {
		asm.SetPos(id, v3.Vec{X: x, Y: y, Z: z})
		_ = a.sess.RefreshDependents([]assembly.NodeID{id})
	}
	return a.Scene()
}

// Mesh tessellates the current structure for the 3D viewport.
func (a *App) Mesh() (*mesh.Mesh, error) {
	return mesh.Build(a.sess, mesh.DefaultOptions())
}

// Snapshot serializes the current structure to JSON.
func (a *App) Snapshot() (string, error) {
	var buf bytes.Buffer
	if err := snapshot.Write(&buf, snapshot.Capture(a.sess.Assembly())); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Restore replaces the current session with one built from snapshot JSON.
func (a *App) Restore(data string) error {
	st, err := snapshot.Read(strings.NewReader(data))
	if err != nil {
		return err
	}
	asm, err := st.Restore(a.cfg.ClassLength)
	if err != nil {
		return err
	}
	a.sess = session.New(asm, a.cfg, observe.NewZap(a.log))
	return nil
}
