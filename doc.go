// Package unpack exports the named regions of a texture atlas as individual,
// correctly framed PNG images bundled into a single zip archive.
//
// The pipeline runs left to right, one region at a time:
//
//	descriptor -> []Region -> Clone(scene) -> Renderer -> ComposeFrame -> Archive
//
// # Quick start
//
//	desc, err := unpack.LoadDescriptor(xmlBytes)
//	// ... handle err ...
//	scene := unpack.NewGroup("atlas")
//	scene.AddChild(unpack.NewImage("page", atlasImage))
//
//	exp, err := unpack.NewExporter(unpack.NewRasterRenderer(unpack.FilterNearest), unpack.DefaultConfig())
//	// ... handle err ...
//	res, err := exp.Export(scene, desc.Regions)
//	// res.Archive holds the zip, res.Failures the regions that were skipped.
//
// # Scene graph
//
// A scene is a tree of [Node] values of two kinds: group nodes, which own
// ordered children, and image nodes, which draw a shared read-only
// [image.Image]. Every region is rendered from a fresh [Clone] of the scene,
// so per-region translation never leaks into the caller's tree or into the
// next region.
//
// # Renderers
//
// Rendering goes through the [Renderer] interface supplied by the host.
// [RasterRenderer] rasterizes on the CPU with golang.org/x/image/draw and
// needs no graphics device; the ebitenrender subpackage renders on the GPU
// through Ebitengine and must be driven from inside the game loop, which is
// what [Job.Step] is for.
//
// # Trimmed sprites
//
// Regions carrying frame metadata were packed with their transparent border
// removed. [ComposeFrame] places the rendered pixels back inside the
// original frame so every exported PNG has its authored size.
//
// # Failures
//
// A region that cannot be rendered, composed, encoded or archived is logged,
// recorded as a [RegionError] in [Result.Failures], and left out of the
// archive; the remaining regions are still exported. Only a failure to
// serialize the finished archive is returned as an error.
package unpack
