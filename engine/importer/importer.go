package importer

import (
	"github.com/blokengine/blok/engine/math"
)

/**
 * @brief Post-processing steps applied by an importer backend after
 * parsing. The mesh pipeline always imports with DefaultPostProcess;
 * the flags exist so tests and tools can opt out of individual steps.
 */
type PostProcess uint32

const (
	/** @brief Split all polygon faces into triangles. */
	PostProcessTriangulate PostProcess = 1 << iota
	/** @brief Flip the vertical texture coordinate axis. */
	PostProcessFlipUVs
	/** @brief Compute tangents and bitangents for meshes that lack them. */
	PostProcessCalcTangentSpace
)

/** @brief The fixed option set used by the mesh resource pipeline. */
const DefaultPostProcess = PostProcessTriangulate | PostProcessFlipUVs | PostProcessCalcTangentSpace

type SceneFlags uint32

const (
	/** @brief The backend could not fully parse the file; the scene must not be used. */
	SceneFlagIncomplete SceneFlags = 1 << 0
)

/**
 * @brief The in-memory representation of a parsed asset file. Meshes are
 * stored flat on the scene; nodes reference them by index, so one mesh
 * may be instanced by several nodes.
 */
type Scene struct {
	Flags    SceneFlags
	RootNode *Node
	Meshes   []*MeshData
}

/**
 * @brief One element of the scene hierarchy. A node references zero or
 * more geometry blocks and has zero or more children, in file order.
 */
type Node struct {
	Name        string
	MeshIndices []uint32
	Children    []*Node
}

/**
 * @brief One importer-provided unit of vertex/face data. All per-vertex
 * channels are either empty or exactly as long as Positions. Faces hold
 * the index lists as supplied by the backend; with PostProcessTriangulate
 * every face has exactly 3 indices.
 */
type MeshData struct {
	Name             string
	Positions        []math.Vec3
	Normals          []math.Vec3
	Tangents         []math.Vec3
	Bitangents       []math.Vec3
	TexcoordChannels [][]math.Vec2
	Faces            [][]uint32
}

/**
 * @brief A format backend. Import parses the file at path synchronously;
 * it is expected to be slow (disk + parsing) and performs no GPU work.
 */
type Importer interface {
	Import(path string, flags PostProcess) (*Scene, error)
	Extensions() []string
}

// synthesizeTangentSpace fills the Tangents and Bitangents channels of the
// mesh from its positions, normals and uv channel 0. Faces must already be
// triangulated. Used by backends whose source format carries no tangent
// data when PostProcessCalcTangentSpace is requested.
func synthesizeTangentSpace(md *MeshData) {
	vertices := make([]math.Vertex3D, len(md.Positions))
	for i := range vertices {
		vertices[i].Position = md.Positions[i]
		if i < len(md.Normals) {
			vertices[i].Normal = md.Normals[i]
		}
		if len(md.TexcoordChannels) > 0 && i < len(md.TexcoordChannels[0]) {
			vertices[i].Texcoord = md.TexcoordChannels[0][i]
		}
	}

	indices := make([]uint32, 0, len(md.Faces)*3)
	for _, face := range md.Faces {
		if len(face) != 3 {
			continue
		}
		indices = append(indices, face[0], face[1], face[2])
	}

	if len(md.Normals) == 0 {
		math.GeometryGenerateNormals(vertices, indices)
		md.Normals = make([]math.Vec3, len(vertices))
		for i := range vertices {
			md.Normals[i] = vertices[i].Normal
		}
	}

	math.GeometryGenerateTangents(vertices, indices)

	md.Tangents = make([]math.Vec3, len(vertices))
	md.Bitangents = make([]math.Vec3, len(vertices))
	for i := range vertices {
		md.Tangents[i] = vertices[i].Tangent
		md.Bitangents[i] = vertices[i].Bitangent
	}
}
