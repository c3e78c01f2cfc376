package systems

import (
	"fmt"

	"github.com/blokengine/blok/engine/core"
	"github.com/blokengine/blok/engine/importer"
	"github.com/blokengine/blok/engine/math"
	"github.com/blokengine/blok/engine/resources"
)

/**
 * @brief The flat vertex/face pair extracted from one geometry block,
 * before any GPU work has happened.
 */
type geometryConfig struct {
	name     string
	vertices []math.Vertex3D
	faces    []resources.Face
}

/**
 * @brief Converts one geometry block into a flat vertex/face pair.
 * Positions and normals are copied verbatim, texture coordinates come
 * from channel 0 or default to (0,0), tangents and bitangents are copied
 * verbatim. Faces must have exactly 3 indices. Missing normal/tangent
 * channels are synthesized rather than read out of bounds; mismatched
 * channel lengths are rejected as malformed. Materials, bones and
 * animation data are deliberately not extracted.
 */
func extractGeometry(md *importer.MeshData) (*geometryConfig, error) {
	vertexCount := len(md.Positions)
	if vertexCount == 0 {
		return nil, fmt.Errorf("%w: geometry block '%s' has no positions", core.ErrMalformedGeometry, md.Name)
	}

	// Every supplied channel must cover every vertex.
	for channelName, length := range map[string]int{
		"normals":    len(md.Normals),
		"tangents":   len(md.Tangents),
		"bitangents": len(md.Bitangents),
	} {
		if length != 0 && length != vertexCount {
			return nil, fmt.Errorf("%w: geometry block '%s' has %d %s for %d vertices",
				core.ErrMalformedGeometry, md.Name, length, channelName, vertexCount)
		}
	}
	hasTexcoords := len(md.TexcoordChannels) > 0 && len(md.TexcoordChannels[0]) > 0
	if hasTexcoords && len(md.TexcoordChannels[0]) != vertexCount {
		return nil, fmt.Errorf("%w: geometry block '%s' has %d texture coordinates for %d vertices",
			core.ErrMalformedGeometry, md.Name, len(md.TexcoordChannels[0]), vertexCount)
	}

	vertices := make([]math.Vertex3D, vertexCount)
	for i := 0; i < vertexCount; i++ {
		vertices[i].Position = md.Positions[i]
		if len(md.Normals) > 0 {
			vertices[i].Normal = md.Normals[i]
		}
		if hasTexcoords {
			vertices[i].Texcoord = md.TexcoordChannels[0][i]
		} else {
			vertices[i].Texcoord = math.NewVec2Zero()
		}
		if len(md.Tangents) > 0 {
			vertices[i].Tangent = md.Tangents[i]
		}
		if len(md.Bitangents) > 0 {
			vertices[i].Bitangent = md.Bitangents[i]
		}
	}

	faces := make([]resources.Face, len(md.Faces))
	for i, face := range md.Faces {
		// The import options triangulate everything; anything else is a
		// contract violation by the backend.
		if len(face) != 3 {
			return nil, fmt.Errorf("%w: geometry block '%s' face %d has %d indices, want 3",
				core.ErrMalformedGeometry, md.Name, i, len(face))
		}
		for _, idx := range face {
			if int(idx) >= vertexCount {
				return nil, fmt.Errorf("%w: geometry block '%s' face %d references vertex %d of %d",
					core.ErrMalformedGeometry, md.Name, i, idx, vertexCount)
			}
		}
		faces[i] = resources.Face{face[0], face[1], face[2]}
	}

	indices := resources.FlattenFaces(faces)
	if len(md.Normals) == 0 {
		math.GeometryGenerateNormals(vertices, indices)
	}
	if len(md.Tangents) == 0 {
		math.GeometryGenerateTangents(vertices, indices)
	} else if len(md.Bitangents) == 0 {
		for i := range vertices {
			vertices[i].Bitangent = vertices[i].Normal.Cross(vertices[i].Tangent).Normalized()
		}
	}

	return &geometryConfig{
		name:     md.Name,
		vertices: vertices,
		faces:    faces,
	}, nil
}

/**
 * @brief Walks the scene's node hierarchy depth-first, parent before
 * children, children in their given order, extracting every referenced
 * geometry block. The resulting order is deterministic for a given scene
 * and is the sole ordering the selection policy relies on.
 */
func collectGeometries(scene *importer.Scene) ([]*geometryConfig, error) {
	var configs []*geometryConfig
	var visit func(node *importer.Node) error
	visit = func(node *importer.Node) error {
		for _, meshIndex := range node.MeshIndices {
			if int(meshIndex) >= len(scene.Meshes) {
				return fmt.Errorf("%w: node '%s' references mesh %d of %d",
					core.ErrMalformedGeometry, node.Name, meshIndex, len(scene.Meshes))
			}
			config, err := extractGeometry(scene.Meshes[meshIndex])
			if err != nil {
				return err
			}
			configs = append(configs, config)
		}
		for _, child := range node.Children {
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(scene.RootNode); err != nil {
		return nil, err
	}
	return configs, nil
}
