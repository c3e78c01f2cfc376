package importer

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/blokengine/blok/engine/core"
	"github.com/blokengine/blok/engine/math"
)

/**
 * @brief Importer backend for glTF 2.0 (.gltf and .glb). Every mesh
 * primitive becomes one geometry block; nodes reference blocks by index,
 * preserving the file's hierarchy and ordering. glTF geometry is already
 * triangulated; primitives with any other topology are skipped.
 */
type GLTFImporter struct{}

func (gi *GLTFImporter) Extensions() []string {
	return []string{".gltf", ".glb"}
}

func (gi *GLTFImporter) Import(path string, flags PostProcess) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	scene := &Scene{}

	// One MeshData per primitive. A glTF mesh therefore maps to one or
	// more geometry blocks, referenced together by the owning node.
	meshLookup := make(map[uint32][]uint32, len(doc.Meshes))
	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				core.LogWarn("gltf '%s': mesh %d primitive %d has non-triangle topology, skipping", path, mi, pi)
				continue
			}
			md, err := gi.readPrimitive(doc, mesh.Name, prim, flags)
			if err != nil {
				return nil, err
			}
			meshLookup[uint32(mi)] = append(meshLookup[uint32(mi)], uint32(len(scene.Meshes)))
			scene.Meshes = append(scene.Meshes, md)
		}
	}

	if len(doc.Scenes) == 0 {
		scene.Flags |= SceneFlagIncomplete
		return scene, nil
	}
	sceneIndex := uint32(0)
	if doc.Scene != nil {
		sceneIndex = *doc.Scene
	}
	if int(sceneIndex) >= len(doc.Scenes) {
		scene.Flags |= SceneFlagIncomplete
		return scene, nil
	}
	src := doc.Scenes[sceneIndex]

	root := &Node{Name: src.Name}
	if root.Name == "" {
		root.Name = "RootNode"
	}
	for _, ni := range src.Nodes {
		child, err := gi.buildNode(doc, ni, meshLookup)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, child)
	}
	scene.RootNode = root

	return scene, nil
}

// buildNode converts one glTF node and its subtree, keeping children in
// file order. Scene hierarchies are trees, so plain recursion suffices.
func (gi *GLTFImporter) buildNode(doc *gltf.Document, index uint32, meshLookup map[uint32][]uint32) (*Node, error) {
	if int(index) >= len(doc.Nodes) {
		return nil, fmt.Errorf("%w: node index %d out of range", core.ErrSceneIncomplete, index)
	}
	src := doc.Nodes[index]

	node := &Node{Name: src.Name}
	if src.Mesh != nil {
		node.MeshIndices = append(node.MeshIndices, meshLookup[*src.Mesh]...)
	}
	for _, ci := range src.Children {
		child, err := gi.buildNode(doc, ci, meshLookup)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func (gi *GLTFImporter) readPrimitive(doc *gltf.Document, name string, prim *gltf.Primitive, flags PostProcess) (*MeshData, error) {
	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("%w: primitive of mesh '%s' has no positions", core.ErrMalformedGeometry, name)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
	if err != nil {
		return nil, err
	}

	md := &MeshData{Name: name}
	md.Positions = make([]math.Vec3, len(positions))
	for i, p := range positions {
		md.Positions[i] = math.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}

	if normalIndex, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[normalIndex], nil)
		if err != nil {
			return nil, err
		}
		md.Normals = make([]math.Vec3, len(normals))
		for i, n := range normals {
			md.Normals[i] = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
	}

	if uvIndex, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIndex], nil)
		if err != nil {
			return nil, err
		}
		channel := make([]math.Vec2, len(uvs))
		for i, uv := range uvs {
			v := uv[1]
			if flags&PostProcessFlipUVs != 0 {
				v = 1.0 - v
			}
			channel[i] = math.Vec2{X: uv[0], Y: v}
		}
		md.TexcoordChannels = append(md.TexcoordChannels, channel)
	}

	// Tangents carried by the file win over synthesized ones. The w
	// component holds the handedness used to derive the bitangent.
	if tangentIndex, ok := prim.Attributes[gltf.TANGENT]; ok && len(md.Normals) == len(md.Positions) {
		tangents, err := modeler.ReadTangent(doc, doc.Accessors[tangentIndex], nil)
		if err != nil {
			return nil, err
		}
		md.Tangents = make([]math.Vec3, len(tangents))
		md.Bitangents = make([]math.Vec3, len(tangents))
		for i, t := range tangents {
			tangent := math.Vec3{X: t[0], Y: t[1], Z: t[2]}
			md.Tangents[i] = tangent
			md.Bitangents[i] = md.Normals[i].Cross(tangent).MulScalar(t[3])
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, err
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: primitive of mesh '%s' has %d indices, not a multiple of 3", core.ErrMalformedGeometry, name, len(indices))
	}
	md.Faces = make([][]uint32, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		md.Faces = append(md.Faces, []uint32{indices[i], indices[i+1], indices[i+2]})
	}

	if flags&PostProcessCalcTangentSpace != 0 && len(md.Tangents) == 0 {
		synthesizeTangentSpace(md)
	}

	return md, nil
}
