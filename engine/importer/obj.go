package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/udhos/gwob"

	"github.com/blokengine/blok/engine/core"
	"github.com/blokengine/blok/engine/math"
)

/**
 * @brief Importer backend for Wavefront OBJ. The parser interleaves
 * position/texture/normal data per vertex and triangulates polygon faces,
 * so the whole file becomes a single geometry block attached to one node.
 */
type OBJImporter struct{}

func (oi *OBJImporter) Extensions() []string {
	return []string{".obj"}
}

func (oi *OBJImporter) Import(path string, flags PostProcess) (*Scene, error) {
	options := &gwob.ObjParserOptions{
		LogStats: false,
		Logger:   func(msg string) { core.LogDebug("obj '%s': %s", path, msg) },
	}
	obj, err := gwob.NewObjFromFile(path, options)
	if err != nil {
		return nil, err
	}

	md, err := oi.readObj(path, obj, flags)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Scene{
		Meshes: []*MeshData{md},
		RootNode: &Node{
			Name: "RootNode",
			Children: []*Node{
				{Name: name, MeshIndices: []uint32{0}},
			},
		},
	}, nil
}

func (oi *OBJImporter) readObj(path string, obj *gwob.Obj, flags PostProcess) (*MeshData, error) {
	// Coord is interleaved; stride values are in bytes of float32 data.
	floatsPerVertex := obj.StrideSize / 4
	if floatsPerVertex == 0 {
		return nil, fmt.Errorf("%w: '%s' has no vertex data", core.ErrMalformedGeometry, path)
	}
	vertexCount := len(obj.Coord) / floatsPerVertex

	md := &MeshData{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	md.Positions = make([]math.Vec3, vertexCount)
	if obj.TextCoordFound {
		md.TexcoordChannels = append(md.TexcoordChannels, make([]math.Vec2, vertexCount))
	}
	if obj.NormCoordFound {
		md.Normals = make([]math.Vec3, vertexCount)
	}

	for i := 0; i < vertexCount; i++ {
		base := i * floatsPerVertex

		p := base + obj.StrideOffsetPosition/4
		md.Positions[i] = math.Vec3{X: obj.Coord[p], Y: obj.Coord[p+1], Z: obj.Coord[p+2]}

		if obj.TextCoordFound {
			t := base + obj.StrideOffsetTexture/4
			v := obj.Coord[t+1]
			if flags&PostProcessFlipUVs != 0 {
				v = 1.0 - v
			}
			md.TexcoordChannels[0][i] = math.Vec2{X: obj.Coord[t], Y: v}
		}

		if obj.NormCoordFound {
			n := base + obj.StrideOffsetNormal/4
			md.Normals[i] = math.Vec3{X: obj.Coord[n], Y: obj.Coord[n+1], Z: obj.Coord[n+2]}
		}
	}

	// The parser emits triangulated indices.
	if len(obj.Indices)%3 != 0 {
		return nil, fmt.Errorf("%w: '%s' has %d indices, not a multiple of 3", core.ErrMalformedGeometry, path, len(obj.Indices))
	}
	md.Faces = make([][]uint32, 0, len(obj.Indices)/3)
	for i := 0; i+2 < len(obj.Indices); i += 3 {
		md.Faces = append(md.Faces, []uint32{
			uint32(obj.Indices[i]),
			uint32(obj.Indices[i+1]),
			uint32(obj.Indices[i+2]),
		})
	}

	if flags&PostProcessCalcTangentSpace != 0 {
		synthesizeTangentSpace(md)
	}

	return md, nil
}
