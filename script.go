package blaze

import (
	"encoding/json"
	"fmt"
	"strings"
)

// scriptStep is a single action in a draw script.
type scriptStep struct {
	Action  string         `json:"action"`
	Texture string         `json:"texture,omitempty"`
	X       float64        `json:"x,omitempty"`
	Y       float64        `json:"y,omitempty"`
	Rotate  float64        `json:"rotation,omitempty"`
	Origin  *[2]float64    `json:"origin,omitempty"`
	Scale   *[2]float64    `json:"scale,omitempty"`
	Source  *[4]uint32     `json:"source,omitempty"`
	Color   *[4]float32    `json:"color,omitempty"`
	Flip    string         `json:"flip,omitempty"`
	Quad    *[4][8]float32 `json:"quad,omitempty"`
	Mode    string         `json:"mode,omitempty"`

	// Repeat draws the sprite Repeat times, advancing by the step fields.
	Repeat       int     `json:"repeat,omitempty"`
	StepX        float64 `json:"stepX,omitempty"`
	StepY        float64 `json:"stepY,omitempty"`
	StepRotation float64 `json:"stepRotation,omitempty"`
}

// DrawScript is a recorded sequence of batch operations, loaded from JSON:
//
//	{
//	  "textures": {"hero": "assets/hero.png"},
//	  "steps": [
//	    {"action": "blend", "mode": "additive"},
//	    {"action": "draw", "texture": "hero", "x": 20, "y": 20, "repeat": 12, "stepX": 40},
//	    {"action": "present"}
//	  ]
//	}
//
// Actions are draw, lower_draw, present, blend and clear. draw_immediate
// and lower_draw_immediate draw at once instead of queueing.
type DrawScript struct {
	Textures map[string]string `json:"textures,omitempty"`
	Steps    []scriptStep      `json:"steps"`
}

// LoadDrawScript parses and checks a JSON draw script.
func LoadDrawScript(jsonData []byte) (*DrawScript, error) {
	var script DrawScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("blaze: parse draw script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("blaze: parse draw script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "draw", "lower_draw", "draw_immediate", "lower_draw_immediate":
			if st.Texture == "" {
				return nil, fmt.Errorf("blaze: parse draw script: step %d: %s without texture", i, st.Action)
			}
			if strings.HasPrefix(st.Action, "lower_") && st.Quad == nil {
				return nil, fmt.Errorf("blaze: parse draw script: step %d: %s without quad", i, st.Action)
			}
		case "present", "clear":
		case "blend":
			if _, err := ParseBlendMode(st.Mode); err != nil {
				return nil, fmt.Errorf("blaze: parse draw script: step %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("blaze: parse draw script: step %d: unknown action %q", i, st.Action)
		}
		if _, err := parseFlip(st.Flip); err != nil {
			return nil, fmt.Errorf("blaze: parse draw script: step %d: %w", i, err)
		}
	}
	return &script, nil
}

// Run executes the script against batch. textures maps the names used by
// steps to loaded textures. The stats of every present are returned in
// order; on failure the error names the step that failed.
func (s *DrawScript) Run(batch *SpriteBatch, backend Backend, textures map[string]*Texture) ([]FrameStats, error) {
	var frames []FrameStats
	for i, st := range s.Steps {
		if err := st.run(batch, backend, textures); err != nil {
			return frames, fmt.Errorf("step %d (%s): %w", i, st.Action, err)
		}
		if st.Action == "present" {
			frames = append(frames, batch.Stats())
		}
	}
	return frames, nil
}

func (st *scriptStep) run(batch *SpriteBatch, backend Backend, textures map[string]*Texture) error {
	switch st.Action {
	case "draw", "draw_immediate":
		draw := batch.Draw
		if st.Action == "draw_immediate" {
			draw = batch.DrawImmediate
		}
		tex, err := lookupTexture(textures, st.Texture)
		if err != nil {
			return err
		}
		opts, err := st.drawOptions()
		if err != nil {
			return err
		}
		n := max(st.Repeat, 1)
		for j := 0; j < n; j++ {
			if err := draw(tex, opts); err != nil {
				return err
			}
			opts.Position.X += st.StepX
			opts.Position.Y += st.StepY
			opts.Rotation += st.StepRotation
		}
		return nil
	case "lower_draw":
		tex, err := lookupTexture(textures, st.Texture)
		if err != nil {
			return err
		}
		return batch.LowerDraw(tex, quadFromRows(*st.Quad))
	case "lower_draw_immediate":
		tex, err := lookupTexture(textures, st.Texture)
		if err != nil {
			return err
		}
		return batch.LowerDrawImmediate(tex, quadFromRows(*st.Quad))
	case "present":
		return batch.Present()
	case "blend":
		mode, err := ParseBlendMode(st.Mode)
		if err != nil {
			return err
		}
		return SetBlendMode(backend, mode)
	case "clear":
		backend.Clear(ClearColor)
		return nil
	}
	return invalidArg("unknown action %q", st.Action)
}

func (st *scriptStep) drawOptions() (DrawOptions, error) {
	flip, err := parseFlip(st.Flip)
	if err != nil {
		return DrawOptions{}, err
	}
	opts := DrawOptions{
		Position: Vec2{st.X, st.Y},
		Rotation: st.Rotate,
		Color:    ColorWhite,
		Flip:     flip,
	}
	if st.Origin != nil {
		opts.Origin = &Vec2{st.Origin[0], st.Origin[1]}
	}
	if st.Scale != nil {
		opts.Scale = &Vec2{st.Scale[0], st.Scale[1]}
	}
	if st.Source != nil {
		opts.Source = &Rect{st.Source[0], st.Source[1], st.Source[2], st.Source[3]}
	}
	if st.Color != nil {
		opts.Color = Color{st.Color[0], st.Color[1], st.Color[2], st.Color[3]}
	}
	return opts, nil
}

// quadFromRows builds a quad from rows of x, y, u, v, r, g, b, a.
func quadFromRows(rows [4][8]float32) Quad {
	var q Quad
	for i, r := range rows {
		q[i] = Vertex{X: r[0], Y: r[1], U: r[2], V: r[3], Color: Color{r[4], r[5], r[6], r[7]}}
	}
	return q
}

func lookupTexture(textures map[string]*Texture, name string) (*Texture, error) {
	tex, ok := textures[name]
	if !ok {
		return nil, invalidArg("unknown texture %q", name)
	}
	return tex, nil
}

func parseFlip(s string) (Flip, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FlipNone, nil
	case "h", "horizontal":
		return FlipH, nil
	case "v", "vertical":
		return FlipV, nil
	case "both", "hv":
		return FlipBoth, nil
	}
	return FlipNone, invalidArg("unknown flip %q", s)
}
