package tilegrid

import "github.com/jakecoffman/cp"

// Attach builds one static box per solid cell on the space's static body.
// Cells are kept as separate shapes so collision can be toggled per cell.
// Each shape's UserData is its Cell.
func (g *Grid) Attach(space *cp.Space, filter cp.ShapeFilter, collisionType cp.CollisionType) {
	if space == nil {
		return
	}
	g.Detach()
	g.space = space
	g.filter = filter
	g.ctype = collisionType
	g.shapes = make(map[Cell]*cp.Shape)
	g.Each(func(c Cell, _, _ bool) { g.syncShape(c) })
}

// Detach removes every tile shape from the attached space.
func (g *Grid) Detach() {
	if g.space == nil {
		return
	}
	for c, shape := range g.shapes {
		g.space.RemoveShape(shape)
		delete(g.shapes, c)
	}
	g.space = nil
}

// Shape returns the static shape of c, if attached.
func (g *Grid) Shape(c Cell) (*cp.Shape, bool) {
	shape, ok := g.shapes[c]
	return shape, ok
}

func (g *Grid) syncShape(c Cell) {
	shape, exists := g.shapes[c]
	if !g.Solid(c) {
		if exists {
			g.space.RemoveShape(shape)
			delete(g.shapes, c)
		}
		return
	}
	if exists {
		return
	}
	shape = cp.NewBox2(g.space.StaticBody, g.CellBB(c), 0)
	shape.SetFriction(0.8)
	shape.SetCollisionType(g.ctype)
	shape.UserData = c
	if g.CollisionEnabled(c) {
		shape.SetFilter(g.filter)
	} else {
		shape.SetFilter(cp.SHAPE_FILTER_NONE)
	}
	g.space.AddShape(shape)
	g.shapes[c] = shape
}
