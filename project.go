package panopaint

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

// Project file layout: a magic tag and version, a length-prefixed JSON
// table describing every layer, then one blob per paint layer keyed by
// layer UUID (zlib-compressed premultiplied RGBA; zero length means the
// layer was never painted). Loading parses and validates everything into
// a staging structure before any live state is touched, so a malformed
// file can never leave a half-applied project behind.

var projectMagic = [4]byte{'P', 'N', 'P', 'T'}

const projectVersion = 1

type projectFile struct {
	Version   int            `json:"version"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Frame     int            `json:"frame"`
	Layers    []projectLayer `json:"layers"`
	Thumbnail []byte         `json:"thumbnail,omitempty"` // PNG preview
}

type projectLayer struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	Type     string                  `json:"type"`
	Parent   string                  `json:"parent,omitempty"`
	Visible  bool                    `json:"visible"`
	Opacity  float64                 `json:"opacity"`
	Expanded bool                    `json:"expanded"`
	Cels     map[string]int          `json:"cels,omitempty"`
	Curves   map[string][]projectKey `json:"curves,omitempty"`
}

type projectKey struct {
	Time  float64 `json:"t"`
	Value float64 `json:"v"`
	In    float64 `json:"in"`
	Out   float64 `json:"out"`
	Mode  string  `json:"mode"`
}

// SaveOptions controls project serialization.
type SaveOptions struct {
	// ThumbnailSize is the longest edge of the embedded PNG preview.
	// Zero disables the thumbnail.
	ThumbnailSize int
}

// SaveProject serializes the document. Paint-layer pixel readback waits
// for pending GPU work before the bytes are consumed.
func (d *Document) SaveProject(w io.Writer, opts SaveOptions) error {
	var pf projectFile
	pf.Version = projectVersion
	pf.Width = d.w
	pf.Height = d.h
	pf.Frame = d.frame

	var paintLayers []*Layer
	collectLayers(d.root, "", &pf.Layers, &paintLayers)

	if opts.ThumbnailSize > 0 {
		thumb, err := d.renderThumbnail(opts.ThumbnailSize)
		if err != nil {
			return fmt.Errorf("save project: %w", err)
		}
		pf.Thumbnail = thumb
	}

	jsonData, err := json.Marshal(&pf)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}

	if _, err := w.Write(projectMagic[:]); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if err := writeU32(w, projectVersion); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if err := writeU32(w, uint32(len(jsonData))); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if _, err := w.Write(jsonData); err != nil {
		return fmt.Errorf("save project: %w", err)
	}

	if err := writeU32(w, uint32(len(paintLayers))); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	for _, l := range paintLayers {
		if err := writeBlob(w, l); err != nil {
			return fmt.Errorf("save project: layer %q: %w", l.Name, err)
		}
	}
	return nil
}

// collectLayers flattens the tree depth-first into the layer table.
// Parents always precede their children, which load-time rebuilding
// relies on.
func collectLayers(l *Layer, parentID string, out *[]projectLayer, paint *[]*Layer) {
	pl := projectLayer{
		ID:       l.UUID.String(),
		Name:     l.Name,
		Type:     l.Type.String(),
		Parent:   parentID,
		Visible:  l.Visible,
		Opacity:  l.Opacity,
		Expanded: l.Expanded,
	}
	switch l.Type {
	case LayerPaint:
		*paint = append(*paint, l)
	case LayerAnimation:
		pl.Cels = make(map[string]int, len(l.cels))
		for f, i := range l.cels {
			pl.Cels[fmt.Sprintf("%d", f)] = i
		}
	case LayerCamera:
		pl.Curves = make(map[string][]projectKey, CurveChannelCount)
		for ch := CurveChannel(0); ch < CurveChannelCount; ch++ {
			curve := l.curves[ch]
			if curve.Len() == 0 {
				continue
			}
			keys := make([]projectKey, curve.Len())
			for i, k := range curve.keys {
				keys[i] = projectKey{
					Time:  k.Time,
					Value: k.Value,
					In:    finiteOrZero(k.InTangent),
					Out:   finiteOrZero(k.OutTangent),
					Mode:  tangentModeTag(k.Mode),
				}
			}
			pl.Curves[ch.String()] = keys
		}
	}
	*out = append(*out, pl)
	for _, child := range l.Children() {
		collectLayers(child, pl.ID, out, paint)
	}
}

// writeBlob writes one paint layer's pixel blob: uuid, dimensions, and
// zlib-compressed premultiplied RGBA. A never-allocated buffer writes a
// zero-length blob.
func writeBlob(w io.Writer, l *Layer) error {
	id := l.UUID
	if _, err := w.Write(id[:]); err != nil {
		return err
	}
	if err := writeU32(w, uint32(l.buffer.Width())); err != nil {
		return err
	}
	if err := writeU32(w, uint32(l.buffer.Height())); err != nil {
		return err
	}
	pix := l.buffer.Pixels()
	if pix == nil {
		return writeU32(w, 0)
	}
	var comp bytes.Buffer
	zw := zlib.NewWriter(&comp)
	if _, err := zw.Write(pix); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := writeU32(w, uint32(comp.Len())); err != nil {
		return err
	}
	_, err := w.Write(comp.Bytes())
	return err
}

// renderThumbnail downsamples the current composite into a PNG preview.
func (d *Document) renderThumbnail(size int) ([]byte, error) {
	src := readNRGBA(d.Composite())
	scale := float64(size) / float64(max(d.w, d.h))
	tw := max(1, int(float64(d.w)*scale))
	th := max(1, int(float64(d.h)*scale))
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- Loading ---

// stagedProject holds a fully parsed and validated project before any
// live state is constructed from it.
type stagedProject struct {
	file  projectFile
	blobs map[uuid.UUID]stagedBlob
}

type stagedBlob struct {
	w, h int
	pix  []byte // nil when the layer was never painted
}

// LoadProject parses and validates a project file and builds a fresh
// document from it. On any error the returned document is nil and no
// live state has been created; the caller's current document is
// untouched.
func LoadProject(r io.Reader) (*Document, error) {
	staged, err := parseProject(r)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	doc, err := staged.build()
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return doc, nil
}

func parseProject(r io.Reader) (*stagedProject, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if magic != projectMagic {
		return nil, fmt.Errorf("unrecognized format tag %q", magic[:])
	}
	version, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != projectVersion {
		return nil, fmt.Errorf("unsupported format version %d", version)
	}

	jsonLen, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("read layer table length: %w", err)
	}
	jsonData := make([]byte, jsonLen)
	if _, err := io.ReadFull(r, jsonData); err != nil {
		return nil, fmt.Errorf("read layer table: %w", err)
	}
	staged := &stagedProject{blobs: make(map[uuid.UUID]stagedBlob)}
	if err := json.Unmarshal(jsonData, &staged.file); err != nil {
		return nil, fmt.Errorf("parse layer table: %w", err)
	}
	if staged.file.Width <= 0 || staged.file.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas dimensions %dx%d", staged.file.Width, staged.file.Height)
	}

	blobCount, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("read blob count: %w", err)
	}
	for i := uint32(0); i < blobCount; i++ {
		if err := staged.readBlob(r); err != nil {
			return nil, fmt.Errorf("read blob %d: %w", i, err)
		}
	}
	if err := staged.validate(); err != nil {
		return nil, err
	}
	return staged, nil
}

func (s *stagedProject) readBlob(r io.Reader) error {
	var id uuid.UUID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return err
	}
	if _, dup := s.blobs[id]; dup {
		return fmt.Errorf("duplicate image blob %s", id)
	}
	w, err := readU32(r)
	if err != nil {
		return err
	}
	h, err := readU32(r)
	if err != nil {
		return err
	}
	compLen, err := readU32(r)
	if err != nil {
		return err
	}
	blob := stagedBlob{w: int(w), h: int(h)}
	if compLen > 0 {
		comp := make([]byte, compLen)
		if _, err := io.ReadFull(r, comp); err != nil {
			return err
		}
		zr, err := zlib.NewReader(bytes.NewReader(comp))
		if err != nil {
			return fmt.Errorf("corrupt image blob: %w", err)
		}
		pix, err := io.ReadAll(zr)
		if err != nil {
			return fmt.Errorf("corrupt image blob: %w", err)
		}
		if len(pix) != 4*blob.w*blob.h {
			return fmt.Errorf("image blob is %d bytes, want %d", len(pix), 4*blob.w*blob.h)
		}
		blob.pix = pix
	}
	s.blobs[id] = blob
	return nil
}

// validate checks every cross-reference in the staged project: parent
// links, layer types, cel index ranges, curve key ordering, and the
// one-to-one pairing of paint layers and image blobs.
func (s *stagedProject) validate() error {
	if len(s.file.Layers) == 0 {
		return fmt.Errorf("project has no layers")
	}
	childCount := make(map[string]int)
	types := make(map[string]string, len(s.file.Layers))
	for i, pl := range s.file.Layers {
		if _, err := uuid.Parse(pl.ID); err != nil {
			return fmt.Errorf("layer %d: invalid id %q", i, pl.ID)
		}
		if _, dup := types[pl.ID]; dup {
			return fmt.Errorf("duplicate layer id %q", pl.ID)
		}
		types[pl.ID] = pl.Type
		if pl.Opacity < 0 || pl.Opacity > 1 {
			return fmt.Errorf("layer %q: opacity %v out of range", pl.Name, pl.Opacity)
		}
		switch pl.Type {
		case "paint", "group", "animation", "camera":
		default:
			return fmt.Errorf("layer %q: unknown type tag %q", pl.Name, pl.Type)
		}
		if pl.Parent != "" {
			parentType, ok := types[pl.Parent]
			if !ok {
				return fmt.Errorf("layer %q: parent %q not defined before child", pl.Name, pl.Parent)
			}
			if parentType == "paint" {
				return fmt.Errorf("layer %q: parent is a paint layer", pl.Name)
			}
			childCount[pl.Parent]++
		} else if i != 0 {
			return fmt.Errorf("layer %q: multiple roots", pl.Name)
		} else if pl.Type != "group" {
			return fmt.Errorf("root layer must be a group, got %q", pl.Type)
		}
	}
	for _, pl := range s.file.Layers {
		for frameTag, idx := range pl.Cels {
			if _, err := fmt.Sscanf(frameTag, "%d", new(int)); err != nil {
				return fmt.Errorf("layer %q: invalid cel frame %q", pl.Name, frameTag)
			}
			if idx < 0 || idx >= childCount[pl.ID] {
				return fmt.Errorf("layer %q: cel index %d out of range", pl.Name, idx)
			}
		}
		for tag, keys := range pl.Curves {
			if _, ok := parseChannel(tag); !ok {
				return fmt.Errorf("layer %q: unknown curve channel %q", pl.Name, tag)
			}
			for i := 1; i < len(keys); i++ {
				if keys[i].Time <= keys[i-1].Time {
					return fmt.Errorf("layer %q: curve %q keys not strictly increasing", pl.Name, tag)
				}
			}
		}
		if pl.Type == "paint" {
			id, _ := uuid.Parse(pl.ID)
			blob, ok := s.blobs[id]
			if !ok {
				return fmt.Errorf("layer %q: missing image blob", pl.Name)
			}
			if blob.pix != nil && (blob.w != s.file.Width || blob.h != s.file.Height) {
				return fmt.Errorf("layer %q: blob is %dx%d, canvas is %dx%d",
					pl.Name, blob.w, blob.h, s.file.Width, s.file.Height)
			}
		}
	}
	for id := range s.blobs {
		if types[id.String()] != "paint" {
			return fmt.Errorf("image blob %s matches no paint layer", id)
		}
	}
	return nil
}

// build constructs the live document from validated staging data.
func (s *stagedProject) build() (*Document, error) {
	doc := NewDocument(s.file.Width, s.file.Height)
	byID := make(map[string]*Layer, len(s.file.Layers))

	for i, pl := range s.file.Layers {
		var l *Layer
		if i == 0 {
			l = doc.Root()
		} else {
			switch pl.Type {
			case "paint":
				l = NewPaintLayer(pl.Name, s.file.Width, s.file.Height)
			case "group":
				l = NewGroupLayer(pl.Name)
			case "animation":
				l = NewAnimationLayer(pl.Name)
			case "camera":
				l = NewCameraLayer(pl.Name)
			}
			byID[pl.Parent].AddChild(l)
		}
		l.UUID = uuid.MustParse(pl.ID)
		l.Name = pl.Name
		l.Visible = pl.Visible
		l.Opacity = pl.Opacity
		l.Expanded = pl.Expanded
		byID[pl.ID] = l
	}

	// Second pass: cels, curves, and pixels, now that children exist.
	for _, pl := range s.file.Layers {
		l := byID[pl.ID]
		switch pl.Type {
		case "animation":
			for frameTag, idx := range pl.Cels {
				var frame int
				fmt.Sscanf(frameTag, "%d", &frame)
				l.SetCel(frame, idx)
			}
		case "camera":
			for tag, keys := range pl.Curves {
				ch, _ := parseChannel(tag)
				curve := l.curves[ch]
				curve.keys = curve.keys[:0]
				for _, k := range keys {
					mode, err := parseTangentMode(k.Mode)
					if err != nil {
						return nil, fmt.Errorf("layer %q: %w", pl.Name, err)
					}
					ck := CurveKey{Time: k.Time, Value: k.Value, InTangent: k.In, OutTangent: k.Out, Mode: mode}
					if mode == TangentHold {
						ck.InTangent = math.Inf(1)
						ck.OutTangent = math.Inf(1)
					}
					curve.keys = append(curve.keys, ck)
				}
			}
		case "paint":
			if blob := s.blobs[l.UUID]; blob.pix != nil {
				l.buffer.SetPixels(blob.pix)
			}
		}
	}

	doc.SetFrame(s.file.Frame)
	doc.MarkDirty()
	return doc, nil
}

// --- Small codec helpers ---

// finiteOrZero replaces the infinite tangents of hold keys with zero for
// JSON, which cannot represent infinity. Load restores them from the mode.
func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func tangentModeTag(m TangentMode) string {
	switch m {
	case TangentLinear:
		return "linear"
	case TangentHold:
		return "hold"
	default:
		return "smooth"
	}
}

func parseTangentMode(tag string) (TangentMode, error) {
	switch tag {
	case "smooth":
		return TangentSmooth, nil
	case "linear":
		return TangentLinear, nil
	case "hold":
		return TangentHold, nil
	}
	return 0, fmt.Errorf("unknown tangent mode %q", tag)
}

func parseChannel(tag string) (CurveChannel, bool) {
	for ch := CurveChannel(0); ch < CurveChannelCount; ch++ {
		if ch.String() == tag {
			return ch, true
		}
	}
	return 0, false
}
