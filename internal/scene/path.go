package scene

import (
	"fmt"
	"strconv"

	"seehuhn.de/go/geom/vec"
)

// curveSteps is the number of segments each Bézier curve is flattened into.
const curveSteps = 8

// ParsePath flattens SVG path data into closed rings of points. Every
// subpath becomes a ring; curves are sampled, arcs are replaced by a
// straight segment to their end point.
func ParsePath(d string) ([][]vec.Vec2, error) {
	toks, err := tokenizePath(d)
	if err != nil {
		return nil, err
	}
	p := pathState{toks: toks}
	for p.more() {
		if err := p.step(); err != nil {
			return nil, err
		}
	}
	p.flush()
	return p.rings, nil
}

type pathToken struct {
	cmd byte // 0 for numbers
	num float64
}

func tokenizePath(d string) ([]pathToken, error) {
	var toks []pathToken
	i := 0
	for i < len(d) {
		c := d[i]
		switch {
		case c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isPathCommand(c):
			toks = append(toks, pathToken{cmd: c})
			i++
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			j := scanNumber(d, i)
			v, err := strconv.ParseFloat(d[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("scene: path number %q: %w", d[i:j], err)
			}
			toks = append(toks, pathToken{num: v})
			i = j
		default:
			return nil, fmt.Errorf("scene: unexpected %q in path data at %d", c, i)
		}
	}
	return toks, nil
}

func isPathCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

// scanNumber returns the end of the number starting at i. Numbers may run
// into each other ("1.5-2", ".5.5"), so a second dot or a sign not after an
// exponent ends the current one.
func scanNumber(d string, i int) int {
	j := i
	if d[j] == '-' || d[j] == '+' {
		j++
	}
	seenDot, seenExp := false, false
	for j < len(d) {
		c := d[j]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp:
			seenExp = true
			if j+1 < len(d) && (d[j+1] == '-' || d[j+1] == '+') {
				j++
			}
		default:
			return j
		}
		j++
	}
	return j
}

type pathState struct {
	toks []pathToken
	pos  int

	cmd        byte
	cur, start vec.Vec2
	ctrl       vec.Vec2 // last control point, for S and T
	ctrlCmd    byte

	ring  []vec.Vec2
	rings [][]vec.Vec2
}

func (p *pathState) more() bool { return p.pos < len(p.toks) }

func (p *pathState) nums(n int) ([]float64, error) {
	if p.pos+n > len(p.toks) {
		return nil, fmt.Errorf("scene: path command %q needs %d numbers", p.cmd, n)
	}
	out := make([]float64, n)
	for i := range out {
		t := p.toks[p.pos+i]
		if t.cmd != 0 {
			return nil, fmt.Errorf("scene: path command %q needs %d numbers", p.cmd, n)
		}
		out[i] = t.num
	}
	p.pos += n
	return out, nil
}

func (p *pathState) flush() {
	if len(p.ring) >= 3 {
		p.rings = append(p.rings, p.ring)
	}
	p.ring = nil
}

func (p *pathState) lineTo(q vec.Vec2) {
	if len(p.ring) == 0 {
		p.ring = append(p.ring, p.cur)
	}
	p.ring = append(p.ring, q)
	p.cur = q
}

func (p *pathState) rel(x, y float64, relative bool) vec.Vec2 {
	if relative {
		return vec.Vec2{X: p.cur.X + x, Y: p.cur.Y + y}
	}
	return vec.Vec2{X: x, Y: y}
}

func (p *pathState) step() error {
	if t := p.toks[p.pos]; t.cmd != 0 {
		p.cmd = t.cmd
		p.pos++
		if p.cmd == 'Z' || p.cmd == 'z' {
			p.cur = p.start
			p.flush()
			p.ctrlCmd = 0
			return nil
		}
	} else if p.cmd == 0 {
		return fmt.Errorf("scene: path data must start with a command")
	}

	relative := p.cmd >= 'a'
	upper := p.cmd &^ 0x20
	switch upper {
	case 'M':
		v, err := p.nums(2)
		if err != nil {
			return err
		}
		p.flush()
		p.cur = p.rel(v[0], v[1], relative)
		p.start = p.cur
		// further pairs are implicit line-tos
		if relative {
			p.cmd = 'l'
		} else {
			p.cmd = 'L'
		}
	case 'L':
		v, err := p.nums(2)
		if err != nil {
			return err
		}
		p.lineTo(p.rel(v[0], v[1], relative))
	case 'H':
		v, err := p.nums(1)
		if err != nil {
			return err
		}
		x := v[0]
		if relative {
			x += p.cur.X
		}
		p.lineTo(vec.Vec2{X: x, Y: p.cur.Y})
	case 'V':
		v, err := p.nums(1)
		if err != nil {
			return err
		}
		y := v[0]
		if relative {
			y += p.cur.Y
		}
		p.lineTo(vec.Vec2{X: p.cur.X, Y: y})
	case 'C', 'S':
		var c1 vec.Vec2
		var rest []float64
		var err error
		if upper == 'C' {
			v, e := p.nums(6)
			if e != nil {
				return e
			}
			c1 = p.rel(v[0], v[1], relative)
			rest = v[2:]
		} else {
			rest, err = p.nums(4)
			if err != nil {
				return err
			}
			c1 = p.cur
			if p.ctrlCmd == 'C' || p.ctrlCmd == 'S' {
				c1 = vec.Vec2{X: 2*p.cur.X - p.ctrl.X, Y: 2*p.cur.Y - p.ctrl.Y}
			}
		}
		c2 := p.rel(rest[0], rest[1], relative)
		end := p.rel(rest[2], rest[3], relative)
		p.cubic(c1, c2, end)
		p.ctrl, p.ctrlCmd = c2, upper
		return nil
	case 'Q', 'T':
		var c vec.Vec2
		var end vec.Vec2
		if upper == 'Q' {
			v, err := p.nums(4)
			if err != nil {
				return err
			}
			c = p.rel(v[0], v[1], relative)
			end = p.rel(v[2], v[3], relative)
		} else {
			v, err := p.nums(2)
			if err != nil {
				return err
			}
			c = p.cur
			if p.ctrlCmd == 'Q' || p.ctrlCmd == 'T' {
				c = vec.Vec2{X: 2*p.cur.X - p.ctrl.X, Y: 2*p.cur.Y - p.ctrl.Y}
			}
			end = p.rel(v[0], v[1], relative)
		}
		p.quad(c, end)
		p.ctrl, p.ctrlCmd = c, upper
		return nil
	case 'A':
		v, err := p.nums(7)
		if err != nil {
			return err
		}
		p.lineTo(p.rel(v[5], v[6], relative))
	default:
		return fmt.Errorf("scene: unexpected number after %q", p.cmd)
	}
	p.ctrlCmd = 0
	return nil
}

func (p *pathState) cubic(c1, c2, end vec.Vec2) {
	p0 := p.cur
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		p.lineTo(vec.Vec2{
			X: a*p0.X + b*c1.X + c*c2.X + d*end.X,
			Y: a*p0.Y + b*c1.Y + c*c2.Y + d*end.Y,
		})
	}
	p.cur = end
}

func (p *pathState) quad(c, end vec.Vec2) {
	p0 := p.cur
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		a, b, d := u*u, 2*u*t, t*t
		p.lineTo(vec.Vec2{
			X: a*p0.X + b*c.X + d*end.X,
			Y: a*p0.Y + b*c.Y + d*end.Y,
		})
	}
	p.cur = end
}
