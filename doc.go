// Package panopaint is a painting engine for spherical (equirectangular)
// panoramas, built on [Ebitengine].
//
// Panopaint provides the bidirectional projection between a perspective
// viewport and the equirectangular texture surface, a distortion-corrected
// brush stamping engine, perspective-ruler snapping along great circles, a
// layered compositor with animated cels and onion skinning, bounded undo
// history, and keyframed camera animation.
//
// # Quick start
//
// Create a [Document], pick a paint layer, and drive strokes through a
// [StrokeController]:
//
//	doc := panopaint.NewDocument(2048, 1024)
//	layer := doc.AddLayer(panopaint.LayerPaint, doc.Root(), -1)
//	doc.SetActiveLayer(layer)
//
//	view := panopaint.NewView()
//	ctrl := panopaint.NewStrokeController(doc, view)
//	ctrl.Begin(0.1, -0.2)
//	ctrl.Move(0.3, -0.1)
//	ctrl.End()
//
// Display the composite through the perspective camera with
// [View.DrawComposite], and export frames with [Document.ExportFrames].
//
// # Layer tree
//
// Every layer is a [Layer]. Layers form a tree rooted at [Document.Root].
// A single flat struct with a [LayerType] discriminant is used for all
// layer kinds: paint layers own a lazily allocated GPU buffer, group
// layers own ordered children, animation layers map frames to child cels,
// and camera layers own keyframed projection curves.
//
// # Coordinates
//
// Viewport coordinates are normalized to [-1, 1] with +u right and +v up.
// Equirectangular UV has u = longitude in [0, 1) wrapping at the ±π seam
// and v = latitude in [0, 1] with v increasing downward. Directions are
// unit [Vec3] values with +Z forward, +Y up.
//
// [Ebitengine]: https://ebitengine.org
package panopaint
