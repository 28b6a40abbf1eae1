// Package keystone is a real-time keystone correction engine for
// [Ebitengine].
//
// A projector mounted off-axis throws a trapezoid onto the wall. keystone
// warps the rectangular video frame into an arbitrary quadrilateral so the
// projected picture comes out rectangular again. The user moves each of the
// four corners with the arrow keys (or a TV remote, which shows up as a
// standard gamepad) from an on-screen menu, and the result is saved and
// restored across sessions.
//
// # Quick start
//
// [Run] opens a window and plays the configured source:
//
//	cfg, err := keystone.LoadConfig("keystone.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := keystone.Run(context.Background(), cfg); err != nil {
//		log.Fatal(err)
//	}
//
// # Warp shape
//
// A [WarpShape] holds one [Offset] per corner. Offsets are multiplied by
// [WarpScale] and added to the full-screen quad in normalized device
// coordinates, so an offset of 1.0 moves a corner by a tenth of the [-1, 1]
// span. Interior points follow the bilinear patch spanned by the corners;
// see [Warp]. Texture coordinates are never warped, only remapped by the
// decoder transform ([Mat4], [TextureTransform]).
//
// # Editing
//
// [Controller] turns [Key] events into menu navigation, corner selection and
// live adjustment. Its states are closed, menu and corner edit:
//
//	Closed      --Confirm--> Menu
//	Menu        --Confirm on a corner row--> CornerEdit
//	CornerEdit  --Confirm--> Menu
//	Menu/Edit   --Cancel--> Closed (unsaved edits stay until restart)
//	Menu        --Save & Exit--> Closed (persisted)
//
// Persistence goes through [ShapeStore] over any [Preferences]. The default
// backend is a TOML file in the user config directory ([FilePreferences]).
//
// # Threads
//
// The controller never shares mutable state with the renderer. Every change
// is published as an immutable [RenderState] through a [StateSlot] and a
// render is requested through [RenderRequests]. Decoded frames reach the
// renderer the same way through a [Surface]. The [Renderer] draws only when
// a render was requested, so a paused picture costs no GPU time.
//
// [Ebitengine]: https://ebitengine.org
package keystone
