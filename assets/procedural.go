package assets

import "github.com/go-gl/mathgl/mgl32"

// GridPlane builds a flat XZ plane centred on the origin split into quads.
// The quads are kept as polygons so the plane can serve as a navmesh.
func GridPlane(width, depth float32, cellsX, cellsZ int) *ModelAsset {
	if cellsX < 1 {
		cellsX = 1
	}
	if cellsZ < 1 {
		cellsZ = 1
	}
	prim := Primitive{}
	stepX := width / float32(cellsX)
	stepZ := depth / float32(cellsZ)
	for z := 0; z <= cellsZ; z++ {
		for x := 0; x <= cellsX; x++ {
			prim.Positions = append(prim.Positions, mgl32.Vec3{
				-width/2 + float32(x)*stepX,
				0,
				-depth/2 + float32(z)*stepZ,
			})
			prim.Normals = append(prim.Normals, mgl32.Vec3{0, 1, 0})
			prim.UVs = append(prim.UVs, mgl32.Vec2{float32(x) / float32(cellsX), float32(z) / float32(cellsZ)})
		}
	}
	row := uint32(cellsX + 1)
	for z := 0; z < cellsZ; z++ {
		for x := 0; x < cellsX; x++ {
			a := uint32(z)*row + uint32(x)
			b := a + 1
			c := a + row + 1
			d := a + row
			prim.Polygons = append(prim.Polygons, []uint32{a, b, c, d})
			prim.Indices = append(prim.Indices, a, b, c, a, c, d)
		}
	}
	return &ModelAsset{
		Meshes: []Mesh{{Name: "plane", Primitives: []Primitive{prim}}},
		Nodes:  []Node{{Name: "plane", Parent: -1, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}},
	}
}

// Box builds an axis-aligned box mesh with the given half extents.
func Box(hx, hy, hz float32) *ModelAsset {
	corners := []mgl32.Vec3{
		{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
	}
	faces := [][]uint32{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
		{3, 7, 6, 2}, // +Y
		{0, 1, 5, 4}, // -Y
	}
	prim := Primitive{Positions: corners, Polygons: faces}
	for _, f := range faces {
		prim.Indices = append(prim.Indices, f[0], f[1], f[2], f[0], f[2], f[3])
	}
	return &ModelAsset{
		Meshes: []Mesh{{Name: "box", Primitives: []Primitive{prim}}},
		Nodes:  []Node{{Name: "box", Parent: -1, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}},
	}
}
