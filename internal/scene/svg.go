package scene

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/vec"
)

// svgNode is a generic element; maps nest their shapes in arbitrary groups.
type svgNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Title    string     `xml:"title"`
	Children []svgNode  `xml:",any"`
}

func (n *svgNode) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *svgNode) hasClass(class string) bool {
	for _, c := range strings.Fields(n.attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// ParseSVG loads a map drawn as an SVG document. Shapes carrying the
// "land" class are regions and their id is the region code. Documents
// without any "land" shape fall back to every shape with a two-letter id.
// A "land" group lends its id to shapes inside it that have none.
func ParseSVG(r io.Reader) (*Scene, error) {
	var root svgNode
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("scene: decode svg: %w", err)
	}
	if root.XMLName.Local != "svg" {
		return nil, fmt.Errorf("scene: root element is <%s>, want <svg>", root.XMLName.Local)
	}

	byClass := root.anyLand()
	s := newScene()
	var walk func(n *svgNode, inherited string) error
	walk = func(n *svgNode, inherited string) error {
		code := inherited
		id := strings.TrimSpace(n.attr("id"))
		switch {
		case byClass && n.hasClass("land") && id != "":
			code = id
		case !byClass && len(id) == 2:
			code = id
		}
		rings, err := n.rings()
		if err != nil {
			return fmt.Errorf("scene: shape %q: %w", id, err)
		}
		if code != "" && len(rings) > 0 {
			name := n.attr("title")
			if name == "" {
				name = strings.TrimSpace(n.Title)
			}
			s.add(code, name, rings)
		}
		for i := range n.Children {
			if err := walk(&n.Children[i], code); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(&root, ""); err != nil {
		return nil, err
	}
	return s.finish()
}

func (n *svgNode) anyLand() bool {
	if n.hasClass("land") {
		return true
	}
	for i := range n.Children {
		if n.Children[i].anyLand() {
			return true
		}
	}
	return false
}

// rings returns the outline of a shape element; groups and unknown
// elements have none.
func (n *svgNode) rings() ([][]vec.Vec2, error) {
	switch n.XMLName.Local {
	case "path":
		return ParsePath(n.attr("d"))
	case "polygon", "polyline":
		pts := parsePoints(n.attr("points"))
		if len(pts) < 3 {
			return nil, nil
		}
		return [][]vec.Vec2{pts}, nil
	case "rect":
		x, y := attrFloat(n, "x"), attrFloat(n, "y")
		w, h := attrFloat(n, "width"), attrFloat(n, "height")
		if w <= 0 || h <= 0 {
			return nil, nil
		}
		return [][]vec.Vec2{{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}}, nil
	}
	return nil, nil
}

func attrFloat(n *svgNode, name string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(n.attr(name)), 64)
	if err != nil {
		return 0
	}
	return v
}

func parsePoints(s string) []vec.Vec2 {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	var pts []vec.Vec2
	for i := 0; i+1 < len(fields); i += 2 {
		x, err1 := strconv.ParseFloat(fields[i], 64)
		y, err2 := strconv.ParseFloat(fields[i+1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pts = append(pts, vec.Vec2{X: x, Y: y})
	}
	return pts
}
