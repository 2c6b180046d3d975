package models

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/labyrinth/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in flat normals when the file carries none.
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{CalculateNormals: true}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.fromDocument(doc, filepath.Base(path))
}

// Decode reads a binary GLTF stream and returns a Mesh.
func (l *GLTFLoader) Decode(r io.Reader, name string) (*Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf: %w", err)
	}
	return l.fromDocument(doc, name)
}

func (l *GLTFLoader) fromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	for _, mat := range doc.Materials {
		m := Material{Name: mat.Name, BaseColor: [4]float64{1, 1, 1, 1}}
		if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			m.BaseColor = *pbr.BaseColorFactor
		}
		mesh.Materials = append(mesh.Materials, m)
	}

	ranges := make(map[vertexSource]vertexRange)
	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh, ranges); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}
	if l.CalculateNormals && !hasNormals {
		mesh.CalculateNormals()
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// vertexSource identifies the attribute accessors of a primitive. Primitives
// that share accessors share vertices.
type vertexSource struct {
	position, normal, uv int
}

// vertexRange is the run of Mesh.Vertices loaded from one source.
type vertexRange struct {
	base, count int
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh, ranges map[vertexSource]vertexRange) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		src := vertexSource{position: posIdx, normal: -1, uv: -1}
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			src.normal = idx
		}
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			src.uv = idx
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		vr, loaded := ranges[src]
		if !loaded {
			vr.base = len(mesh.Vertices)
			if err := appendVertices(doc, src, mesh); err != nil {
				return err
			}
			vr.count = len(mesh.Vertices) - vr.base
			ranges[src] = vr
		}
		baseVertex, vertexCount := vr.base, vr.count

		var indices []int
		if prim.Indices != nil {
			var err error
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, vertexCount)
			for i := range indices {
				indices[i] = i
			}
		}

		// GLTF front faces are counter-clockwise; ours are clockwise.
		for i := 0; i+2 < len(indices); i += 3 {
			a, b, c := indices[i], indices[i+1], indices[i+2]
			if max(a, b, c) >= vertexCount {
				return fmt.Errorf("index %d out of range for %d vertices", max(a, b, c), vertexCount)
			}
			mesh.Faces = append(mesh.Faces, Face{
				V:        [3]int{baseVertex + a, baseVertex + c, baseVertex + b},
				Material: material,
			})
		}
	}

	return nil
}

// appendVertices reads the attributes named by src onto the end of
// mesh.Vertices.
func appendVertices(doc *gltf.Document, src vertexSource, mesh *Mesh) error {
	positions, err := readVec3Accessor(doc, src.position)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	var normals []math3d.Vec3
	if src.normal >= 0 {
		if normals, err = readVec3Accessor(doc, src.normal); err != nil {
			return fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs []math3d.Vec2
	if src.uv >= 0 {
		if uvs, err = readVec2Accessor(doc, src.uv); err != nil {
			return fmt.Errorf("read uvs: %w", err)
		}
	}

	for i := range positions {
		v := MeshVertex{Position: positions[i]}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			// GLTF puts V=0 at the top of the image.
			v.UV = math3d.V2(uvs[i].X, 1.0-uvs[i].Y)
		}
		mesh.Vertices = append(mesh.Vertices, v)
	}
	return nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, len(floats)/3)
	for i := range result {
		result[i] = math3d.V3(floats[3*i], floats[3*i+1], floats[3*i+2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec2)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, len(floats)/2)
	for i := range result {
		result[i] = math3d.V2(floats[2*i], floats[2*i+1])
	}
	return result, nil
}

// readFloats reads a float accessor of the given type as a flat slice.
func readFloats(doc *gltf.Document, accessorIdx int, want gltf.AccessorType) ([]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != want {
		return nil, fmt.Errorf("expected %v, got %v", want, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	width := accessor.Type.Components()
	data, stride, err := accessorBytes(doc, accessor, 4*int(width))
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, accessor.Count*int(width))
	for i := range accessor.Count {
		off := i * stride
		for j := range int(width) {
			bits := binary.LittleEndian.Uint32(data[off+4*j:])
			out = append(out, float64(math.Float32frombits(bits)))
		}
	}
	return out, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		default:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// accessorBytes returns the bytes an accessor covers, starting at its first
// element, and the stride between elements.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]

	if buffer.Data == nil {
		return nil, 0, fmt.Errorf("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bufferView.ByteOffset + accessor.ByteOffset
	end := start
	if accessor.Count > 0 {
		end = start + (accessor.Count-1)*stride + elemSize
	}
	if end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("accessor spans %d bytes, buffer has %d", end, len(buffer.Data))
	}
	return buffer.Data[start:end], stride, nil
}

// ExportGLB writes m to w as a binary GLTF document with one primitive per
// material. Winding and the V axis are converted to GLTF conventions so that
// loading the result reproduces m.
func ExportGLB(w io.Writer, m *Mesh) error {
	if len(m.Faces) == 0 {
		return fmt.Errorf("export %q: mesh has no faces", m.Name)
	}

	doc := gltf.NewDocument()

	positions := make([][3]float32, len(m.Vertices))
	normals := make([][3]float32, len(m.Vertices))
	uvs := make([][2]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = [3]float32{float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z)}
		normals[i] = [3]float32{float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z)}
		uvs[i] = [2]float32{float32(v.UV.X), float32(1 - v.UV.Y)}
	}
	attrs := map[string]int{
		gltf.POSITION:   modeler.WritePosition(doc, positions),
		gltf.NORMAL:     modeler.WriteNormal(doc, normals),
		gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
	}

	for _, mat := range m.Materials {
		color := mat.BaseColor
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: mat.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &color,
				MetallicFactor:  gltf.Float(0),
				RoughnessFactor: gltf.Float(1),
			},
		})
	}

	// -1 collects faces without a material.
	byMaterial := make(map[int][]uint32)
	order := make([]int, 0, len(m.Materials)+1)
	for _, f := range m.Faces {
		k := f.Material
		if k >= len(m.Materials) {
			k = -1
		}
		if _, seen := byMaterial[k]; !seen {
			order = append(order, k)
		}
		byMaterial[k] = append(byMaterial[k], uint32(f.V[0]), uint32(f.V[2]), uint32(f.V[1]))
	}

	gm := &gltf.Mesh{Name: m.Name}
	for _, k := range order {
		prim := &gltf.Primitive{
			Indices:    gltf.Index(modeler.WriteIndices(doc, byMaterial[k])),
			Attributes: attrs,
		}
		if k >= 0 {
			prim.Material = gltf.Index(k)
		}
		gm.Primitives = append(gm.Primitives, prim)
	}
	doc.Meshes = []*gltf.Mesh{gm}
	doc.Nodes = []*gltf.Node{{Name: m.Name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export %q: %w", m.Name, err)
	}
	return nil
}

// SaveGLB writes m to path as a binary GLTF file.
func SaveGLB(path string, m *Mesh) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return ExportGLB(f, m)
}
