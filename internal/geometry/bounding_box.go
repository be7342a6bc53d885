package geometry

// BoundingBox is an axis aligned box, with cached mid values along each axis
type BoundingBox struct {
	Xmin, Xmax       float64
	Ymin, Ymax       float64
	Zmin, Zmax       float64
	Xmid, Ymid, Zmid float64
}

// Builds a BoundingBox from its min and max coordinates
func NewBoundingBox(Xmin, Xmax, Ymin, Ymax, Zmin, Zmax float64) *BoundingBox {
	return &BoundingBox{
		Xmin: Xmin,
		Xmax: Xmax,
		Ymin: Ymin,
		Ymax: Ymax,
		Zmin: Zmin,
		Zmax: Zmax,
		Xmid: (Xmin + Xmax) / 2,
		Ymid: (Ymin + Ymax) / 2,
		Zmid: (Zmin + Zmax) / 2,
	}
}

// Returns true if the point lies inside the box or on its boundary
func (b *BoundingBox) Contains(x, y, z float64) bool {
	return x >= b.Xmin && x <= b.Xmax &&
		y >= b.Ymin && y <= b.Ymax &&
		z >= b.Zmin && z <= b.Zmax
}

// Returns true if the projection of the point on the XY plane lies inside the box footprint
func (b *BoundingBox) ContainsPlanimetric(x, y float64) bool {
	return x >= b.Xmin && x <= b.Xmax && y >= b.Ymin && y <= b.Ymax
}

// Returns a copy of the box grown by margin on every horizontal side. The vertical extent is unchanged.
func (b *BoundingBox) ExpandPlanimetric(margin float64) *BoundingBox {
	return NewBoundingBox(b.Xmin-margin, b.Xmax+margin, b.Ymin-margin, b.Ymax+margin, b.Zmin, b.Zmax)
}

func (b *BoundingBox) Width() float64 {
	return b.Xmax - b.Xmin
}

func (b *BoundingBox) Length() float64 {
	return b.Ymax - b.Ymin
}

func (b *BoundingBox) Height() float64 {
	return b.Zmax - b.Zmin
}

// Returns the box as a [minX, maxX, minY, maxY, minZ, maxZ] slice
func (b *BoundingBox) GetAsArray() []float64 {
	return []float64{b.Xmin, b.Xmax, b.Ymin, b.Ymax, b.Zmin, b.Zmax}
}
