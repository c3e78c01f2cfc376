package math

/**
 * @brief Generates face normals for the given vertices in place. Every
 * vertex of a triangle receives that triangle's normal; smoothing, if
 * desired, is a separate pass.
 */
func GeometryGenerateNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		normal := edge1.Cross(edge2).Normalized()

		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

/**
 * @brief Generates tangents and bitangents for the given vertices in
 * place, from the uv gradients across each triangle. Triangles with
 * degenerate uvs fall back to an arbitrary tangent perpendicular to the
 * normal so downstream attribute data is always finite.
 */
func GeometryGenerateTangents(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		deltaU1 := vertices[i1].Texcoord.X - vertices[i0].Texcoord.X
		deltaV1 := vertices[i1].Texcoord.Y - vertices[i0].Texcoord.Y

		deltaU2 := vertices[i2].Texcoord.X - vertices[i0].Texcoord.X
		deltaV2 := vertices[i2].Texcoord.Y - vertices[i0].Texcoord.Y

		var tangent Vec3
		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if kabs(dividend) <= K_FLOAT_EPSILON {
			// Degenerate uvs. Any vector not parallel to the edge works.
			tangent = edge1.Normalized()
		} else {
			fc := 1.0 / dividend
			tangent = Vec3{
				fc * (deltaV2*edge1.X - deltaV1*edge2.X),
				fc * (deltaV2*edge1.Y - deltaV1*edge2.Y),
				fc * (deltaV2*edge1.Z - deltaV1*edge2.Z),
			}
			tangent = tangent.Normalized()

			handedness := float32(1.0)
			if (deltaV1*deltaU2 - deltaV2*deltaU1) < 0.0 {
				handedness = -1.0
			}
			tangent = tangent.MulScalar(handedness)
		}

		for _, idx := range []uint32{i0, i1, i2} {
			vertices[idx].Tangent = tangent
			vertices[idx].Bitangent = vertices[idx].Normal.Cross(tangent).Normalized()
		}
	}
}

func Vertex3dEqual(vert0 Vertex3D, vert1 Vertex3D) bool {
	return vert0.Position.Compare(vert1.Position, K_FLOAT_EPSILON) &&
		vert0.Normal.Compare(vert1.Normal, K_FLOAT_EPSILON) &&
		vert0.Texcoord.Compare(vert1.Texcoord, K_FLOAT_EPSILON) &&
		vert0.Tangent.Compare(vert1.Tangent, K_FLOAT_EPSILON) &&
		vert0.Bitangent.Compare(vert1.Bitangent, K_FLOAT_EPSILON)
}

/**
 * @brief Computes the axis-aligned extents of the given vertices.
 */
func GeometryCalculateExtents(vertices []Vertex3D) Extents3D {
	if len(vertices) == 0 {
		return Extents3D{}
	}
	extents := Extents3D{
		Min: NewVec3(K_INFINITY, K_INFINITY, K_INFINITY),
		Max: NewVec3(-K_INFINITY, -K_INFINITY, -K_INFINITY),
	}
	for _, v := range vertices {
		extents.Min.X = Min(extents.Min.X, v.Position.X)
		extents.Min.Y = Min(extents.Min.Y, v.Position.Y)
		extents.Min.Z = Min(extents.Min.Z, v.Position.Z)
		extents.Max.X = Max(extents.Max.X, v.Position.X)
		extents.Max.Y = Max(extents.Max.Y, v.Position.Y)
		extents.Max.Z = Max(extents.Max.Z, v.Position.Z)
	}
	return extents
}

/**
 * @brief Computes the center point of the given extents.
 */
func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}
